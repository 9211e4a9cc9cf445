package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func contact(name, title string, sc float64) model.Contact {
	return model.Contact{
		Candidate: model.Candidate{Name: name, Title: title},
		Score:     sc,
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		title string
		want  Category
	}{
		{"Technical Recruiter", CategoryRecruiter},
		{"Talent Acquisition Partner", CategoryRecruiter},
		{"Recruiting Manager", CategoryRecruiter}, // recruiter keywords win
		{"Engineering Manager", CategoryManager},
		{"Tech Lead", CategoryManager},
		{"Software Engineer", CategoryEngineer},
		{"Data Scientist", CategoryEngineer},
		{"", CategoryEngineer},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(contact("X", tt.title, 0.5)))
		})
	}
}

func TestSelectDiverse_SmallPoolReturnsAll(t *testing.T) {
	pool := []model.Contact{
		contact("A", "Recruiter", 0.9),
		contact("B", "Engineer", 0.8),
	}
	out := SelectDiverse(pool, 8, DefaultQuotas())
	assert.Equal(t, pool, out)
}

func TestSelectDiverse_QuotasRespected(t *testing.T) {
	pool := []model.Contact{
		contact("R1", "Recruiter", 0.99),
		contact("R2", "Recruiter", 0.98),
		contact("R3", "Recruiter", 0.97),
		contact("R4", "Recruiter", 0.96),
		contact("E1", "Engineer", 0.60),
		contact("E2", "Engineer", 0.59),
		contact("E3", "Engineer", 0.58),
		contact("M1", "Engineering Manager", 0.55),
		contact("E4", "Engineer", 0.50),
		contact("M2", "Engineering Manager", 0.45),
	}

	out := SelectDiverse(pool, 6, DefaultQuotas())
	require.Len(t, out, 6)

	counts := map[Category]int{}
	for _, c := range out {
		counts[Categorize(c)]++
	}
	assert.GreaterOrEqual(t, counts[CategoryRecruiter], 2)
	assert.GreaterOrEqual(t, counts[CategoryEngineer], 3)
	assert.GreaterOrEqual(t, counts[CategoryManager], 1)
}

func TestSelectDiverse_ReturnsMinTargetPool(t *testing.T) {
	pool := []model.Contact{
		contact("A", "Engineer", 0.9),
		contact("B", "Engineer", 0.8),
		contact("C", "Engineer", 0.7),
	}

	assert.Len(t, SelectDiverse(pool, 2, DefaultQuotas()), 2)
	assert.Len(t, SelectDiverse(pool, 3, DefaultQuotas()), 3)
	assert.Len(t, SelectDiverse(pool, 10, DefaultQuotas()), 3)
}

func TestSelectDiverse_FillsWithHighestScores(t *testing.T) {
	// All engineers: the quota pass takes three, the fill pass must take
	// the next-highest regardless of category.
	pool := []model.Contact{
		contact("E1", "Engineer", 0.9),
		contact("E2", "Engineer", 0.8),
		contact("E3", "Engineer", 0.7),
		contact("E4", "Engineer", 0.6),
		contact("E5", "Engineer", 0.5),
	}

	out := SelectDiverse(pool, 4, DefaultQuotas())
	require.Len(t, out, 4)
	assert.Equal(t, "E1", out[0].Name)
	assert.Equal(t, "E4", out[3].Name)
}

func TestSelectDiverse_PreservesScoreOrder(t *testing.T) {
	pool := []model.Contact{
		contact("R1", "Recruiter", 0.9),
		contact("E1", "Engineer", 0.8),
		contact("M1", "Manager", 0.7),
		contact("E2", "Engineer", 0.6),
		contact("E3", "Engineer", 0.5),
		contact("R2", "Recruiter", 0.4),
		contact("E4", "Engineer", 0.3),
	}

	out := SelectDiverse(pool, 6, DefaultQuotas())
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Score, out[i].Score)
	}
}

func TestSelectDiverse_ZeroTarget(t *testing.T) {
	pool := []model.Contact{contact("A", "Engineer", 0.9)}
	assert.Nil(t, SelectDiverse(pool, 0, DefaultQuotas()))
}
