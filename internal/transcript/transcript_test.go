package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"learnpool-client/internal/model"
)

func TestValidateContentBounds(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"four runes", "abcd", ErrContentTooShort},
		{"five runes", "abcde", nil},
		{"at limit", strings.Repeat("x", 2000), nil},
		{"over limit", strings.Repeat("x", 2001), ErrContentTooLong},
		{"whitespace only", "        ", ErrContentTooShort},
		{"trimmed before counting", "  abcde  ", nil},
		{"multibyte runes count as one", "héllo", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.content)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReplaceReportsGrowth(t *testing.T) {
	tr := New()

	grew := tr.Replace([]model.QuestionOut{{QuestionID: 1}})
	assert.True(t, grew)

	grew = tr.Replace([]model.QuestionOut{{QuestionID: 1}})
	assert.False(t, grew, "same length is not growth")

	grew = tr.Replace([]model.QuestionOut{{QuestionID: 1}, {QuestionID: 2}})
	assert.True(t, grew)
	assert.Equal(t, 2, tr.Len())
}

func TestPendingCount(t *testing.T) {
	tr := New()
	tr.Replace([]model.QuestionOut{
		{QuestionID: 1},
		{QuestionID: 2, Answer: &model.Answer{ID: 10}},
		{QuestionID: 3},
	})
	assert.Equal(t, 2, tr.PendingCount())

	assert.True(t, Pending(model.QuestionOut{QuestionID: 1}))
	assert.False(t, Pending(model.QuestionOut{QuestionID: 2, Answer: &model.Answer{ID: 10}}))
}

func TestMarkPublishedCopiesList(t *testing.T) {
	original := []model.QuestionOut{
		{QuestionID: 1},
		{QuestionID: 2},
		{QuestionID: 3},
	}

	patched := MarkPublished(original, []uint{1, 3, 99})

	assert.True(t, patched[0].Published)
	assert.False(t, patched[1].Published)
	assert.True(t, patched[2].Published)

	for _, q := range original {
		assert.False(t, q.Published, "input list must stay untouched")
	}
}
