package model

// ReviewMode selects what the review screen shows.
type ReviewMode int

const (
	ImageMode ReviewMode = iota
	TextMode
)

func (m ReviewMode) String() string {
	if m == TextMode {
		return "text"
	}
	return "image"
}

// ReviewModel holds the state of the review screen. Updates happen on the
// UI thread only. The zero value shows an image with no text.
type ReviewModel struct {
	mode       ReviewMode
	processing bool
	text       string
}

// BeginRecognition clears previous text and marks OCR as pending.
func (m *ReviewModel) BeginRecognition() {
	if m == nil {
		return
	}
	m.processing = true
	m.text = ""
	m.mode = ImageMode
}

// FinishRecognition records an OCR outcome. Text switches the mode to
// TextMode; no text leaves the image showing.
func (m *ReviewModel) FinishRecognition(text string, ok bool) {
	if m == nil {
		return
	}
	m.processing = false
	if ok && text != "" {
		m.text = text
		m.mode = TextMode
		return
	}
	m.text = ""
	m.mode = ImageMode
}

// SetMode switches modes. TextMode is refused when there is no text.
func (m *ReviewModel) SetMode(mode ReviewMode) bool {
	if m == nil {
		return false
	}
	if mode == TextMode && m.text == "" {
		return false
	}
	m.mode = mode
	return true
}

func (m *ReviewModel) Mode() ReviewMode {
	if m == nil {
		return ImageMode
	}
	return m.mode
}

func (m *ReviewModel) Processing() bool { return m != nil && m.processing }

func (m *ReviewModel) Text() string {
	if m == nil {
		return ""
	}
	return m.text
}

func (m *ReviewModel) HasText() bool { return m.Text() != "" }
