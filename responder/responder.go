// Package responder fakes the assistant: keyword classification into a
// fixed category, then a uniform-random pick from that category's canned
// replies. Classification is deterministic; only the string choice is
// random, and the random source is injectable so tests can pin it.
package responder

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

type Category string

const (
	CategoryCarbon         Category = "carbon"
	CategorySustainability Category = "sustainability"
	CategoryWeb            Category = "web"
	CategoryProject        Category = "project"
	CategoryContact        Category = "contact"
	CategoryPricing        Category = "pricing"
	CategoryDefault        Category = "default"
)

// rules are evaluated in order; first match wins. Matching is
// case-insensitive substring.
var rules = []struct {
	category Category
	keywords []string
}{
	{CategoryCarbon, []string{"carbon", "emission", "co2"}},
	{CategorySustainability, []string{"sustain", "green", "eco"}},
	{CategoryWeb, []string{"web", "development", "website", "code"}},
	{CategoryProject, []string{"project", "business", "service"}},
	{CategoryContact, []string{"contact", "help", "support"}},
	{CategoryPricing, []string{"price", "cost", "quote"}},
}

var replies = map[Category][]string{
	CategoryCarbon: {
		"🌱 Carbon emissions are typically measured in kgCO₂e/m². The 2030 target is to keep embodied carbon below 500 kgCO₂e/m² for sustainable construction.",
		"♻️ Reducing carbon emissions in construction can be achieved through material selection, energy-efficient designs, and renewable energy integration.",
		"🏗️ Embodied carbon refers to the total greenhouse gas emissions from materials and construction processes. It's crucial for achieving net-zero buildings.",
	},
	CategorySustainability: {
		"🌿 Sustainable building practices include using recycled materials, implementing energy-efficient systems, and designing for longevity.",
		"🏆 Green building certifications like LEED and BREEAM help ensure environmental standards are met in construction projects.",
		"🎯 Sustainable design focuses on minimizing environmental impact while maximizing efficiency and occupant comfort.",
	},
	CategoryWeb: {
		"💻 Modern web development focuses on performance, accessibility, and user experience. Technologies like Next.js and React provide excellent foundations.",
		"⚡ For optimal web performance, consider implementing lazy loading, optimizing images, and using efficient bundling strategies.",
		"📱 Responsive design ensures your website works seamlessly across all devices and screen sizes.",
	},
	CategoryProject: {
		"🚀 I'd be happy to discuss your project requirements. What specific goals are you looking to achieve?",
		"💼 Our services include web development, sustainability consulting, and carbon footprint analysis. What interests you most?",
		"🎯 Every successful project starts with understanding your unique needs and objectives. Tell me more about what you're planning.",
	},
	CategoryContact: {
		"📞 You can reach our team at hello@modernweb.com or call +1 (555) 123-4567. We're available Mon-Fri, 9AM-6PM. How else can I assist you?",
	},
	CategoryPricing: {
		"💰 Pricing varies based on project scope and requirements. I'd recommend scheduling a consultation to discuss your specific needs and get an accurate quote. Would you like me to help you get in touch with our team?",
	},
	CategoryDefault: {
		"🤔 That's an interesting question! Could you provide more details so I can give you a more specific answer?",
		"💡 I'd be happy to help with that. Can you tell me more about what you're looking for?",
		"✨ Great question! Let me know if you need information about our services, sustainability practices, or web development.",
		"🎯 I'm here to assist you. Feel free to ask about carbon emissions, web development, or any of our services.",
	},
}

type FileCategory string

const (
	FileImage       FileCategory = "image"
	FileDocument    FileCategory = "document"
	FileSpreadsheet FileCategory = "spreadsheet"
	FileOther       FileCategory = "other"
)

var fileReplies = map[FileCategory]string{
	FileImage:       "🖼️ I can see you've uploaded an image! While I can't analyze images directly in this demo, in a full implementation I could help you with image analysis, optimization suggestions, or discuss how images relate to web performance and carbon footprint.",
	FileDocument:    "📄 Thanks for uploading a document! In a complete implementation, I could analyze document content, extract key information, or help you with document-related questions about sustainability, carbon emissions, or technical specifications.",
	FileSpreadsheet: "📊 I see you've shared a spreadsheet or data file! This could be great for analyzing carbon emissions data, project metrics, or sustainability KPIs. In a full version, I could help interpret the data and provide insights.",
	FileOther:       "📁 I've received your file %q. While I can't process all file types directly in this demo, I'm here to help answer any questions you might have about the content or how it relates to sustainability and web development.",
}

// transcripts stand in for speech-to-text. They are intentionally not
// derived from the audio; the fake is the product behavior.
var transcripts = []string{
	"I heard you mention something about sustainability. Could you tell me more about what you're looking for?",
	"Thanks for the voice message! I'm processing what you said about carbon emissions.",
	"I caught something about web development in your message. What specific aspect would you like to discuss?",
	"Your voice input mentioned a project. I'd love to help you with the details!",
	"I heard your question about our services. Let me provide you with some information.",
}

// Responder selects canned replies. Safe for concurrent use.
type Responder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Responder using rng for reply selection; pass a seeded
// source to make tests deterministic. A nil rng gets a fresh one.
func New(rng *rand.Rand) *Responder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Responder{rng: rng}
}

// Classify maps message text to a reply category.
func Classify(text string) Category {
	lowered := strings.ToLower(text)
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.category
			}
		}
	}
	return CategoryDefault
}

// ClassifyFile maps a MIME type to a file reply category.
func ClassifyFile(mimeType string) FileCategory {
	lowered := strings.ToLower(mimeType)
	switch {
	case strings.Contains(lowered, "image"):
		return FileImage
	case strings.Contains(lowered, "pdf"), strings.Contains(lowered, "document"):
		return FileDocument
	case strings.Contains(lowered, "spreadsheet"), strings.Contains(lowered, "csv"):
		return FileSpreadsheet
	default:
		return FileOther
	}
}

// Replies returns a copy of the fixed reply set for a category.
func Replies(category Category) []string {
	set := replies[category]
	out := make([]string, len(set))
	copy(out, set)
	return out
}

// FileReply returns the canned reply for an uploaded file. The "other"
// category interpolates the file name.
func FileReply(name, mimeType string) string {
	category := ClassifyFile(mimeType)
	if category == FileOther {
		return fmt.Sprintf(fileReplies[FileOther], name)
	}
	return fileReplies[category]
}

// Transcripts returns a copy of the canned transcript set.
func Transcripts() []string {
	out := make([]string, len(transcripts))
	copy(out, transcripts)
	return out
}

// Reply classifies text and picks a reply uniformly from its category.
func (r *Responder) Reply(text string) string {
	set := replies[Classify(text)]
	r.mu.Lock()
	defer r.mu.Unlock()
	return set[r.rng.IntN(len(set))]
}

// Transcript picks one of the canned "transcribed" sentences.
func (r *Responder) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return transcripts[r.rng.IntN(len(transcripts))]
}
