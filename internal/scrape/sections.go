package scrape

import "strings"

// PersonSections selects which profile pages to visit. BasicInfo is always
// implied.
type PersonSections uint8

const (
	PersonBasicInfo PersonSections = 1 << iota
	PersonExperience
	PersonEducation
	PersonInterests
	PersonHonors
	PersonLanguages
	PersonContactInfo
)

// CompanySections selects which company pages to visit. About is always
// implied.
type CompanySections uint8

const (
	CompanyAbout CompanySections = 1 << iota
	CompanyPosts
	CompanyJobs
)

var personSectionNames = map[string]PersonSections{
	"experience":   PersonExperience,
	"education":    PersonEducation,
	"interests":    PersonInterests,
	"honors":       PersonHonors,
	"languages":    PersonLanguages,
	"contact_info": PersonContactInfo,
}

var companySectionNames = map[string]CompanySections{
	"posts": CompanyPosts,
	"jobs":  CompanyJobs,
}

// ParsePersonSections turns a comma-separated section list into flags.
// BasicInfo is always set. Unknown names are returned for the caller to
// warn about, never an error.
func ParsePersonSections(s string) (PersonSections, []string) {
	flags := PersonBasicInfo
	var unknown []string
	for _, name := range splitSections(s) {
		if f, ok := personSectionNames[name]; ok {
			flags |= f
		} else {
			unknown = append(unknown, name)
		}
	}
	return flags, unknown
}

// ParseCompanySections is the company-side counterpart; About is always set.
func ParseCompanySections(s string) (CompanySections, []string) {
	flags := CompanyAbout
	var unknown []string
	for _, name := range splitSections(s) {
		if f, ok := companySectionNames[name]; ok {
			flags |= f
		} else {
			unknown = append(unknown, name)
		}
	}
	return flags, unknown
}

func splitSections(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// personPage maps one section flag to its profile URL suffix. Declaration
// order is the canonical visit order.
type personPage struct {
	flag    PersonSections
	name    string
	suffix  string
	overlay bool
}

var personPages = []personPage{
	{PersonBasicInfo, "main_profile", "/", false},
	{PersonExperience, "experience", "/details/experience/", false},
	{PersonEducation, "education", "/details/education/", false},
	{PersonInterests, "interests", "/details/interests/", false},
	{PersonHonors, "honors", "/details/honors/", false},
	{PersonLanguages, "languages", "/details/languages/", false},
	{PersonContactInfo, "contact_info", "/overlay/contact-info/", true},
}

type companyPage struct {
	flag   CompanySections
	name   string
	suffix string
}

var companyPages = []companyPage{
	{CompanyAbout, "about", "/about/"},
	{CompanyPosts, "posts", "/posts/"},
	{CompanyJobs, "jobs", "/jobs/"},
}
