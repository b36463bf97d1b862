package enrichment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"confcrm/internal/crm/models"
)

func TestRenderPrompt(t *testing.T) {
	a := models.Attendee{
		ID:        uuid.New(),
		FirstName: "Jane",
		LastName:  "Doe",
		Title:     "CIO",
		Company:   "Mercy General",
	}

	t.Run("substitutes known variables", func(t *testing.T) {
		got := RenderPrompt("Write an intro for {{first_name}} {{last_name}}, {{title}} at {{company}}.", a)
		assert.Equal(t, "Write an intro for Jane Doe, CIO at Mercy General.", got)
	})

	t.Run("tolerates surrounding whitespace in the placeholder", func(t *testing.T) {
		got := RenderPrompt("Hello {{ first_name }}", a)
		assert.Equal(t, "Hello Jane", got)
	})

	t.Run("unknown variables render empty", func(t *testing.T) {
		got := RenderPrompt("X{{not_a_field}}Y", a)
		assert.Equal(t, "XY", got)
	})

	t.Run("template without variables passes through", func(t *testing.T) {
		got := RenderPrompt("no placeholders here", a)
		assert.Equal(t, "no placeholders here", got)
	})

	t.Run("empty field values substitute as empty", func(t *testing.T) {
		got := RenderPrompt("phone: {{phone}}", a)
		assert.Equal(t, "phone: ", got)
	})
}
