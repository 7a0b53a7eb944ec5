package dashboard

import (
	"sort"
	"strings"

	"school-portal-gateway/internal/model"
)

// All is the "no filter" value of select-style filters.
const All = "all"

func contains(s, term string) bool {
	return strings.Contains(strings.ToLower(s), term)
}

func normalized(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

type StudentFilter struct {
	Search    string `form:"search"`
	ClassName string `form:"class"`
}

// FilterStudents matches the search term against name or roll number and
// the class by name.
func FilterStudents(students []model.Student, f StudentFilter) []model.Student {
	term := normalized(f.Search)
	out := []model.Student{}
	for _, s := range students {
		if term != "" && !contains(s.Name, term) && !contains(s.RollNumber, term) {
			continue
		}
		if f.ClassName != "" && f.ClassName != All {
			className := ""
			if s.Class != nil {
				className = s.Class.Name
			}
			if className != f.ClassName {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

type TeacherFilter struct {
	Search  string `form:"search"`
	Subject string `form:"subject"`
}

func FilterTeachers(teachers []model.Teacher, f TeacherFilter) []model.Teacher {
	term := normalized(f.Search)
	subject := normalized(f.Subject)
	out := []model.Teacher{}
	for _, t := range teachers {
		if term != "" && !contains(t.Name, term) && !contains(t.Email, term) {
			continue
		}
		if subject != "" && subject != All && !contains(t.Subject, subject) {
			continue
		}
		out = append(out, t)
	}
	return out
}

type UserFilter struct {
	Role   string `form:"role"`
	Search string `form:"search"`
}

func FilterUsers(users []model.User, f UserFilter) []model.User {
	role := normalized(f.Role)
	term := normalized(f.Search)
	out := []model.User{}
	for _, u := range users {
		if role != "" && role != All && string(u.RoleKind()) != role {
			continue
		}
		if term != "" && !contains(u.Username, term) && !contains(u.Email, term) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// FilterResults keeps results of one subject. Empty or "all" keeps everything.
func FilterResults(results []model.ExamResult, subject string) []model.ExamResult {
	if subject == "" || subject == All {
		return results
	}
	out := []model.ExamResult{}
	for _, r := range results {
		if r.Subject == subject {
			out = append(out, r)
		}
	}
	return out
}

// Subjects lists the distinct subjects in first-seen order.
func Subjects(results []model.ExamResult) []string {
	seen := make(map[string]bool)
	subjects := []string{}
	for _, r := range results {
		if r.Subject == "" || seen[r.Subject] {
			continue
		}
		seen[r.Subject] = true
		subjects = append(subjects, r.Subject)
	}
	return subjects
}

// RecentResults returns up to n results, newest exam first.
func RecentResults(results []model.ExamResult, n int) []model.ExamResult {
	sorted := make([]model.ExamResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExamDate > sorted[j].ExamDate
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// PendingResults counts results with no marks entered yet.
func PendingResults(results []model.ExamResult) int {
	n := 0
	for _, r := range results {
		if r.ObtainedMarks == 0 {
			n++
		}
	}
	return n
}
