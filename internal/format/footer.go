package format

import "fmt"

// Footer is the promotional fragment appended to every successful answer.
type Footer struct {
	Href     string `yaml:"href" koanf:"href"`
	ImageSrc string `yaml:"image_src" koanf:"image_src"`
	Alt      string `yaml:"alt" koanf:"alt"`
}

// DefaultFooter links to the project's support page.
var DefaultFooter = Footer{
	Href:     "https://www.buymeacoffee.com/nunnai",
	ImageSrc: "/public/images/coffee-full-logo.png",
	Alt:      "Buy Me A Coffee",
}

// HTML renders the footer fragment. An empty Href yields no footer.
func (f Footer) HTML() string {
	if f.Href == "" {
		return ""
	}
	return fmt.Sprintf(`<div class="support-message"><a href="%s" target="_blank"><img src="%s" alt="%s"></a></div>`,
		f.Href, f.ImageSrc, f.Alt)
}

// Append adds the footer after an already formatted fragment.
func (f Footer) Append(fragment string) string {
	return fragment + f.HTML()
}

// WithFooter appends DefaultFooter to fragment.
func WithFooter(fragment string) string {
	return DefaultFooter.Append(fragment)
}
