package attendance

import "school-portal-gateway/internal/model"

// ClassKey renders "<name> - <section>". A nil class gives " - ".
func ClassKey(class *model.Class) string {
	if class == nil {
		return " - "
	}
	return class.Name + " - " + class.Section
}

type Group struct {
	Key      string          `json:"key"`
	Students []model.Student `json:"students"`
}

// Grouping keeps class groups in the order their key was first seen.
type Grouping struct {
	Groups []Group `json:"groups"`
	index  map[string]int
}

func GroupByClass(students []model.Student) *Grouping {
	g := &Grouping{
		Groups: []Group{},
		index:  make(map[string]int),
	}
	for _, student := range students {
		key := ClassKey(student.Class)
		i, ok := g.index[key]
		if !ok {
			i = len(g.Groups)
			g.index[key] = i
			g.Groups = append(g.Groups, Group{Key: key})
		}
		g.Groups[i].Students = append(g.Groups[i].Students, student)
	}
	return g
}

func (g *Grouping) Keys() []string {
	keys := make([]string, len(g.Groups))
	for i, group := range g.Groups {
		keys[i] = group.Key
	}
	return keys
}

// Students returns nil for an unknown key.
func (g *Grouping) Students(key string) []model.Student {
	i, ok := g.index[key]
	if !ok {
		return nil
	}
	return g.Groups[i].Students
}

func (g *Grouping) Len() int {
	return len(g.Groups)
}

// All returns every grouped student in group order.
func (g *Grouping) All() []model.Student {
	var out []model.Student
	for _, group := range g.Groups {
		out = append(out, group.Students...)
	}
	return out
}
