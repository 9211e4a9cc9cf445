package score

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Category buckets a contact by title keyword for diversity selection.
type Category string

const (
	CategoryRecruiter Category = "recruiter"
	CategoryManager   Category = "manager"
	CategoryEngineer  Category = "engineer"
)

// Quotas sets the per-category minimum slots for diversity selection.
type Quotas struct {
	Recruiters int
	Engineers  int
	Managers   int
}

// DefaultQuotas matches the standard shortlist mix.
func DefaultQuotas() Quotas {
	return Quotas{Recruiters: 2, Engineers: 3, Managers: 1}
}

// Categorize buckets a contact by title keyword. Recruiter keywords win
// over manager keywords; everything else counts as engineer.
func Categorize(c model.Contact) Category {
	title := strings.ToLower(c.Title)
	if strings.Contains(title, "recruit") || strings.Contains(title, "talent") {
		return CategoryRecruiter
	}
	if strings.Contains(title, "manager") || strings.Contains(title, "lead") {
		return CategoryManager
	}
	return CategoryEngineer
}

// SelectDiverse picks up to target contacts from a score-descending
// list: first greedily filling per-category quotas, then topping up with
// the highest-scoring unselected contacts regardless of category.
// Descending score order is preserved in the result. Returns exactly
// min(target, len(contacts)) contacts.
func SelectDiverse(contacts []model.Contact, target int, quotas Quotas) []model.Contact {
	if target <= 0 || len(contacts) == 0 {
		return nil
	}
	if len(contacts) <= target {
		out := make([]model.Contact, len(contacts))
		copy(out, contacts)
		return out
	}

	remaining := map[Category]int{
		CategoryRecruiter: quotas.Recruiters,
		CategoryEngineer:  quotas.Engineers,
		CategoryManager:   quotas.Managers,
	}

	selected := make([]bool, len(contacts))
	count := 0

	// Quota pass, in descending score order.
	for i, c := range contacts {
		if count >= target {
			break
		}
		cat := Categorize(c)
		if remaining[cat] > 0 {
			remaining[cat]--
			selected[i] = true
			count++
		}
	}

	// Fill pass: next-highest scores regardless of category.
	for i := range contacts {
		if count >= target {
			break
		}
		if !selected[i] {
			selected[i] = true
			count++
		}
	}

	out := make([]model.Contact, 0, count)
	for i, c := range contacts {
		if selected[i] {
			out = append(out, c)
		}
	}
	return out
}
