package attendance

import (
	"encoding/json"
	"fmt"
	"math"

	"school-portal-gateway/internal/model"
)

type Summary struct {
	Total   int     `json:"total"`
	Present int     `json:"present"`
	Absent  int     `json:"absent"`
	Leave   int     `json:"leave"`
	Rate    float64 `json:"rate"`
}

func (s *Summary) add(status model.AttendanceStatus) {
	s.Total++
	switch status {
	case model.StatusPresent:
		s.Present++
	case model.StatusAbsent:
		s.Absent++
	case model.StatusLeave:
		s.Leave++
	}
}

func (s *Summary) finish() {
	total := s.Total
	if total < 1 {
		total = 1
	}
	s.Rate = float64(s.Present) / float64(total) * 100
}

// RateString formats the rate with one decimal, e.g. "87.5%". Ties round
// away from zero, so 26.25 renders as "26.3%".
func (s Summary) RateString() string {
	return fmt.Sprintf("%.1f%%", math.Round(s.Rate*10)/10)
}

func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	return json.Marshal(struct {
		plain
		RateText string `json:"rate_text"`
	}{plain(s), s.RateString()})
}

// Summarize counts the records whose date lies in r. Records with an
// unknown status still count towards the total.
func Summarize(records []model.AttendanceRecord, r model.DateRange) Summary {
	var s Summary
	for _, record := range records {
		if !r.Contains(record.Date) {
			continue
		}
		s.add(record.Status)
	}
	s.finish()
	return s
}

type StudentSummary struct {
	StudentID int64   `json:"student_id"`
	Name      string  `json:"name"`
	Summary   Summary `json:"summary"`
}

// SummarizeByStudent returns one summary per student in first-seen order.
// Records without a populated student are grouped under id 0.
func SummarizeByStudent(records []model.AttendanceRecord, r model.DateRange) []StudentSummary {
	out := []StudentSummary{}
	index := make(map[int64]int)
	for _, record := range records {
		if !r.Contains(record.Date) {
			continue
		}
		id := record.StudentID()
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			entry := StudentSummary{StudentID: id}
			if record.Student != nil {
				entry.Name = record.Student.Name
			}
			out = append(out, entry)
		}
		out[i].Summary.add(record.Status)
	}
	for i := range out {
		out[i].Summary.finish()
	}
	return out
}

type ClassSummary struct {
	Key      string  `json:"key"`
	Students int     `json:"students"`
	Summary  Summary `json:"summary"`
}

// SummarizeByClass attributes each record to the class its student was
// grouped under. Records for students outside the grouping are ignored.
func SummarizeByClass(g *Grouping, records []model.AttendanceRecord, r model.DateRange) []ClassSummary {
	classOf := make(map[int64]string)
	out := make([]ClassSummary, len(g.Groups))
	for i, group := range g.Groups {
		out[i] = ClassSummary{Key: group.Key, Students: len(group.Students)}
		for _, student := range group.Students {
			classOf[student.ID] = group.Key
		}
	}

	for _, record := range records {
		if !r.Contains(record.Date) {
			continue
		}
		key, ok := classOf[record.StudentID()]
		if !ok {
			continue
		}
		out[g.index[key]].Summary.add(record.Status)
	}
	for i := range out {
		out[i].Summary.finish()
	}
	return out
}
