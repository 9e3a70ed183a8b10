package responder_test

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/modernweb/assist/responder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnit_Classify(t *testing.T) {
	tests := []struct {
		text string
		want responder.Category
	}{
		{"What about carbon emissions in construction?", responder.CategoryCarbon},
		{"Tell me about CO2 targets", responder.CategoryCarbon},
		{"how sustainable is this?", responder.CategorySustainability},
		{"any green certifications?", responder.CategorySustainability},
		{"I need a website", responder.CategoryWeb},
		{"can you review my CODE?", responder.CategoryWeb},
		{"a new business project", responder.CategoryProject},
		{"how do I contact you?", responder.CategoryContact},
		{"I need help", responder.CategoryContact},
		{"what does it cost?", responder.CategoryPricing},
		{"send me a quote", responder.CategoryPricing},
		{"hello there", responder.CategoryDefault},
		{"", responder.CategoryDefault},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, responder.Classify(tt.text), "text: %q", tt.text)
	}
}

func TestUnit_ClassifyFirstMatchWins(t *testing.T) {
	// "carbon" outranks "web" because rules are evaluated in order.
	got := responder.Classify("a website about carbon")
	assert.Equal(t, responder.CategoryCarbon, got)
}

func TestUnit_ReplyStaysInCategory(t *testing.T) {
	r := responder.New(rand.New(rand.NewPCG(1, 2)))

	carbonSet := responder.Replies(responder.CategoryCarbon)
	require.NotEmpty(t, carbonSet)

	// The exact string is random; the category is the invariant.
	for i := 0; i < 20; i++ {
		reply := r.Reply("What about carbon emissions in construction?")
		assert.Contains(t, carbonSet, reply)
		assert.NotContains(t, responder.Replies(responder.CategoryDefault), reply)
	}
}

func TestUnit_ReplyDefaultFallback(t *testing.T) {
	r := responder.New(rand.New(rand.NewPCG(3, 4)))

	defaultSet := responder.Replies(responder.CategoryDefault)
	for i := 0; i < 20; i++ {
		assert.Contains(t, defaultSet, r.Reply("xyzzy"))
	}
}

func TestUnit_ClassifyFile(t *testing.T) {
	tests := []struct {
		mime string
		want responder.FileCategory
	}{
		{"image/png", responder.FileImage},
		{"IMAGE/JPEG", responder.FileImage},
		{"application/pdf", responder.FileDocument},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", responder.FileDocument},
		// xlsx MIME contains "officedocument", and the document rule runs first.
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", responder.FileDocument},
		{"text/csv", responder.FileSpreadsheet},
		{"audio/wav", responder.FileOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, responder.ClassifyFile(tt.mime), "mime: %q", tt.mime)
	}
}

func TestUnit_FileReplyInterpolatesName(t *testing.T) {
	reply := responder.FileReply("notes.wav", "audio/wav")
	assert.Contains(t, reply, `"notes.wav"`)

	// Non-other categories use their fixed text untouched.
	imageReply := responder.FileReply("photo.png", "image/png")
	assert.NotContains(t, imageReply, "photo.png")
}

func TestUnit_TranscriptFromFixedSet(t *testing.T) {
	r := responder.New(rand.New(rand.NewPCG(5, 6)))

	set := responder.Transcripts()
	require.Len(t, set, 5)
	for i := 0; i < 10; i++ {
		assert.Contains(t, set, r.Transcript())
	}
}

func TestUnit_RepliesReturnsCopy(t *testing.T) {
	first := responder.Replies(responder.CategoryCarbon)
	first[0] = strings.ToUpper(first[0])
	second := responder.Replies(responder.CategoryCarbon)
	assert.NotEqual(t, first[0], second[0])
}
