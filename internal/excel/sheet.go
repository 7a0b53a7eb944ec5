package excel

import "context"

// ResultSheet parses and validates an exam-results workbook in one step.
type ResultSheet struct {
	parser    *Parser
	validator *Validator
}

func NewResultSheet() *ResultSheet {
	return &ResultSheet{
		parser:    NewParser(),
		validator: NewValidator(),
	}
}

func (s *ResultSheet) Read(ctx context.Context, data []byte) ([]ResultRow, error) {
	rows, err := s.parser.Parse(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
