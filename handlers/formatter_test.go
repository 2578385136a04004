package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatResponse(t *testing.T) {
	t.Run("Should break numbered lists onto their own lines", func(t *testing.T) {
		got := FormatResponse("Try these: 1. Check cables 2. Restart the box")
		assert.Equal(t, "Try these:\n1. Check cables\n2. Restart the box", got)
	})

	t.Run("Should break bullet markers onto their own lines", func(t *testing.T) {
		got := FormatResponse("Options: - unplug it - wait 30 seconds")
		assert.Equal(t, "Options:\n- unplug it\n- wait 30 seconds", got)
	})

	t.Run("Should put bold headings on their own line", func(t *testing.T) {
		got := FormatResponse("Done. **Next steps** follow below")
		assert.Equal(t, "Done.\n**Next steps** follow below", got)
	})

	t.Run("Should insert a paragraph break after a question", func(t *testing.T) {
		got := FormatResponse("Is the light on? Check the power cable.")
		assert.Equal(t, "Is the light on?\n\nCheck the power cable.", got)
	})

	t.Run("Should collapse three or more newlines to two", func(t *testing.T) {
		got := FormatResponse("first\n\n\n\nsecond")
		assert.Equal(t, "first\n\nsecond", got)
	})

	t.Run("Should normalize repeated spaces", func(t *testing.T) {
		got := FormatResponse("step   one    done")
		assert.Equal(t, "step one done", got)
	})

	t.Run("Should stabilize after one extra pass", func(t *testing.T) {
		inputs := []string{
			"Try: 1. one 2. two 3. three",
			"Is it plugged in? Yes. **Good** - then restart",
			"a\n\n\n\nb? C",
		}
		for _, input := range inputs {
			once := FormatResponse(input)
			assert.Equal(t, once, FormatResponse(once))
		}
	})
}
