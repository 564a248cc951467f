package sitedata

import (
	pc "github.com/unkn0wn-root/prioritycache"
	"github.com/unkn0wn-root/prioritycache/swr"
)

// Dataset describes one cached slice of site content: where it is cached,
// which backend query feeds it, what to show before anything is known and how
// critical it is to first paint.
type Dataset[V any] struct {
	Key      string
	Query    string
	Priority pc.Priority
	Fallback V
	Usable   func(V) bool
}

// The dataset table. Lists fall through to their fallback while the remote
// list is empty; records while the remote returns null.
var (
	StatisticsSet = Dataset[[]Statistic]{
		Key: "statistics", Query: "statistics:getStatistics", Priority: pc.High,
		Fallback: fallbackStatistics, Usable: swr.NonEmpty[Statistic],
	}
	ServicesSet = Dataset[[]Service]{
		Key: "services", Query: "services:getServices", Priority: pc.High,
		Fallback: fallbackServices, Usable: swr.NonEmpty[Service],
	}
	ZonesSet = Dataset[[]Zone]{
		Key: "zones", Query: "zones:getZones", Priority: pc.Medium,
		Fallback: fallbackZones, Usable: swr.NonEmpty[Zone],
	}
	TestimonialsSet = Dataset[[]Testimonial]{
		Key: "testimonials", Query: "testimonials:getTestimonials", Priority: pc.Medium,
		Fallback: fallbackTestimonials, Usable: swr.NonEmpty[Testimonial],
	}
	PortfolioSet = Dataset[[]Project]{
		Key: "portfolio", Query: "portfolio:getProjects", Priority: pc.Medium,
		Fallback: fallbackPortfolio, Usable: swr.NonEmpty[Project],
	}
	HeroSet = Dataset[*Hero]{
		Key: "site-config:hero", Query: "siteConfig:getHero", Priority: pc.Critical,
		Fallback: fallbackHero, Usable: swr.NonNil[Hero],
	}
	AboutSet = Dataset[*About]{
		Key: "site-config:about", Query: "siteConfig:getAbout", Priority: pc.High,
		Fallback: fallbackAbout, Usable: swr.NonNil[About],
	}
	ContactSet = Dataset[*Contact]{
		Key: "site-config:contact", Query: "siteConfig:getContact", Priority: pc.Critical,
		Fallback: fallbackContact, Usable: swr.NonNil[Contact],
	}
	CompanySet = Dataset[*CompanyInfo]{
		Key: "company-info", Query: "siteConfig:getCompanyInfo", Priority: pc.Critical,
		Fallback: fallbackCompany, Usable: swr.NonNil[CompanyInfo],
	}
	SEOSet = Dataset[*SEO]{
		Key: "site-config:seo", Query: "siteConfig:getSeo", Priority: pc.Low,
		Fallback: fallbackSEO, Usable: swr.NonNil[SEO],
	}
)

var fallbackStatistics = []Statistic{
	{ID: "years", Label: "Années d'expérience", Value: "25", Suffix: "+", Order: 1},
	{ID: "facades", Label: "Façades rénovées", Value: "1 200", Suffix: "+", Order: 2},
	{ID: "satisfaction", Label: "Clients satisfaits", Value: "98", Suffix: "%", Order: 3},
	{ID: "guarantee", Label: "Garantie décennale", Value: "10", Suffix: " ans", Order: 4},
}

var fallbackServices = []Service{
	{
		ID: "ravalement", Slug: "ravalement-de-facade", Title: "Ravalement de façade", Icon: "brush",
		Description: "Nettoyage, traitement des fissures et remise en peinture de vos façades.",
		Features:    []string{"Diagnostic gratuit", "Traitement des fissures", "Peinture minérale ou pliolite"},
		Order:       1,
	},
	{
		ID: "ite", Slug: "isolation-thermique-exterieure", Title: "Isolation thermique par l'extérieur", Icon: "thermometer",
		Description: "Isolation par l'extérieur éligible aux aides MaPrimeRénov'.",
		Features:    []string{"Polystyrène ou laine de roche", "Finition enduit ou bardage", "Accompagnement aux aides"},
		Order:       2,
	},
	{
		ID: "nettoyage", Slug: "nettoyage-demoussage", Title: "Nettoyage et démoussage", Icon: "droplets",
		Description: "Nettoyage haute pression basse température et traitement anti-mousse.",
		Order:       3,
	},
	{
		ID: "enduit", Slug: "enduit-crepi", Title: "Enduit et crépi", Icon: "layers",
		Description: "Réfection d'enduits traditionnels à la chaux ou monocouche.",
		Order:       4,
	},
}

var fallbackZones = []Zone{
	{ID: "lyon", City: "Lyon", PostalCode: "69000", Department: "Rhône", Order: 1},
	{ID: "villeurbanne", City: "Villeurbanne", PostalCode: "69100", Department: "Rhône", Order: 2},
	{ID: "caluire", City: "Caluire-et-Cuire", PostalCode: "69300", Department: "Rhône", Order: 3},
	{ID: "venissieux", City: "Vénissieux", PostalCode: "69200", Department: "Rhône", Order: 4},
	{ID: "bourgoin", City: "Bourgoin-Jallieu", PostalCode: "38300", Department: "Isère", Order: 5},
}

var fallbackTestimonials = []Testimonial{
	{
		ID: "t1", Author: "Sophie L.", Location: "Villeurbanne", Rating: 5, Service: "ravalement", Order: 1,
		Quote: "Chantier propre, délais tenus et une façade comme neuve. Je recommande.",
	},
	{
		ID: "t2", Author: "Marc D.", Location: "Caluire-et-Cuire", Rating: 5, Service: "ite", Order: 2,
		Quote: "Isolation extérieure impeccable, notre facture de chauffage a nettement baissé.",
	},
	{
		ID: "t3", Author: "Copropriété Les Tilleuls", Location: "Lyon 3e", Rating: 4, Service: "ravalement", Order: 3,
		Quote: "Très bon suivi avec le syndic du début à la réception des travaux.",
	},
}

var fallbackPortfolio = []Project{
	{
		ID: "p1", Title: "Maison de ville", Location: "Lyon 4e", Category: "ravalement", Year: 2024, Order: 1,
		Description: "Ravalement complet et reprise des modénatures.",
	},
	{
		ID: "p2", Title: "Pavillon années 70", Location: "Vénissieux", Category: "ite", Year: 2023, Order: 2,
		Description: "Isolation thermique par l'extérieur, finition enduit gratté.",
	},
}

var fallbackHero = &Hero{
	Title:    "Rénovation de façades à Lyon et alentours",
	Subtitle: "Ravalement, isolation par l'extérieur et nettoyage depuis plus de 25 ans.",
	CTALabel: "Demander un devis gratuit",
	CTAHref:  "/contact",
	Badges:   []string{"Garantie décennale", "Certifié RGE", "Devis sous 48h"},
}

var fallbackAbout = &About{
	Title: "Une entreprise familiale",
	Paragraphs: []string{
		"Depuis 1999, nous redonnons vie aux façades de la métropole lyonnaise.",
		"Nos équipes interviennent sur maisons individuelles comme sur copropriétés.",
	},
	YearsExperience: 25,
	Certifications:  []string{"RGE Qualibat", "Garantie décennale"},
}

var fallbackContact = &Contact{
	Phone:        "04 78 00 00 00",
	Email:        "contact@facades-martin.fr",
	Address:      "12 rue des Artisans",
	PostalCode:   "69007",
	City:         "Lyon",
	OpeningHours: []string{"Lun-Ven 8h-18h", "Sam 9h-12h"},
}

var fallbackCompany = &CompanyInfo{
	Name:      "Façades Martin",
	LegalName: "Façades Martin & Fils SARL",
	SIRET:     "123 456 789 00012",
	Founded:   1999,
	Slogan:    "Vos façades entre de bonnes mains",
	Phone:     "04 78 00 00 00",
	Email:     "contact@facades-martin.fr",
	Website:   "https://www.facades-martin.fr",
}

var fallbackSEO = &SEO{
	Title:       "Façades Martin | Ravalement et isolation de façades à Lyon",
	Description: "Entreprise de rénovation de façades à Lyon : ravalement, ITE, nettoyage. Devis gratuit.",
	Keywords:    []string{"ravalement façade Lyon", "isolation extérieure", "rénovation façade"},
}
