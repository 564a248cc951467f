package sitedata

// Statistic is a headline figure on the home page ("25 ans d'expérience").
type Statistic struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Suffix string `json:"suffix,omitempty"`
	Order  int    `json:"order"`
}

type Service struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon,omitempty"`
	Features    []string `json:"features,omitempty"`
	Order       int      `json:"order"`
}

// Zone is a town the company works in.
type Zone struct {
	ID         string `json:"id"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Department string `json:"department"`
	Order      int    `json:"order"`
}

type Testimonial struct {
	ID       string `json:"id"`
	Author   string `json:"author"`
	Location string `json:"location"`
	Rating   int    `json:"rating"`
	Quote    string `json:"quote"`
	Service  string `json:"service,omitempty"`
	Order    int    `json:"order"`
}

// Project is a portfolio item with before/after pictures.
type Project struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Description string `json:"description"`
	BeforeImage string `json:"beforeImage,omitempty"`
	AfterImage  string `json:"afterImage,omitempty"`
	Year        int    `json:"year"`
	Order       int    `json:"order"`
}

type Hero struct {
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle"`
	CTALabel        string   `json:"ctaLabel"`
	CTAHref         string   `json:"ctaHref"`
	BackgroundImage string   `json:"backgroundImage,omitempty"`
	Badges          []string `json:"badges,omitempty"`
}

type About struct {
	Title           string   `json:"title"`
	Paragraphs      []string `json:"paragraphs"`
	YearsExperience int      `json:"yearsExperience"`
	Certifications  []string `json:"certifications,omitempty"`
	Image           string   `json:"image,omitempty"`
}

type Contact struct {
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	Address        string   `json:"address"`
	PostalCode     string   `json:"postalCode"`
	City           string   `json:"city"`
	OpeningHours   []string `json:"openingHours"`
	EmergencyPhone string   `json:"emergencyPhone,omitempty"`
	MapURL         string   `json:"mapUrl,omitempty"`
}

type CompanyInfo struct {
	Name      string            `json:"name"`
	LegalName string            `json:"legalName"`
	SIRET     string            `json:"siret"`
	Founded   int               `json:"founded"`
	Slogan    string            `json:"slogan"`
	Phone     string            `json:"phone"`
	Email     string            `json:"email"`
	Website   string            `json:"website"`
	Socials   map[string]string `json:"socials,omitempty"`
}

type SEO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
	OGImage     string   `json:"ogImage,omitempty"`
}
