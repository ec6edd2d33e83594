package domain

import "strings"

var companyNames = map[string]string{
	"accenture":        "Accenture",
	"adobe":            "Adobe",
	"allstate":         "Allstate",
	"appliedmaterials": "Applied Materials",
	"assurant":         "Assurant",
	"astrazeneca":      "AstraZeneca",
	"autodesk":         "Autodesk",
	"az":               "AstraZeneca",
	"bah":              "Booz Allen Hamilton",
	"baptist":          "Baptist Health",
	"broadridge":       "Broadridge",
	"cardinal":         "Cardinal Health",
	"cat":              "Caterpillar",
	"clevelandclinic":  "Cleveland Clinic",
	"cox":              "Cox",
	"cushmanwakefield": "Cushman & Wakefield",
	"cvshealth":        "CVS Health",
	"davita":           "DaVita",
	"denverhealth":     "Denver Health",
	"discover":         "Discover",
	"expedia":          "Expedia",
	"gartner":          "Gartner",
	"gm":               "General Motors",
	"grubhub":          "Grubhub",
	"hartford":         "The Hartford",
	"homedepot":        "Home Depot",
	"huntington":       "Huntington",
	"iqvia":            "IQVIA",
	"kbr":              "KBR",
	"lilly":            "Eli Lilly",
	"marmon":           "Marmon",
	"noblecorp":        "Noble Corporation",
	"nvidia":           "NVIDIA",
	"ohiohealth":       "OhioHealth",
	"oregon":           "State of Oregon",
	"premier":          "Premier",
	"progleasing":      "Progressive Leasing",
	"prologis":         "Prologis",
	"prysmian":         "Prysmian",
	"radian":           "Radian",
	"reliaquest":       "ReliaQuest",
	"republic":         "Republic Services",
	"salesforce":       "Salesforce",
	"sanofi":           "Sanofi",
	"scottsmiracle":    "Scotts Miracle-Gro",
	"sunlife":          "Sun Life",
	"target":           "Target",
	"ulse":             "UL Solutions",
	"unhcr":            "UNHCR",
	"verily":           "Verily",
	"verizon":          "Verizon",
	"walmart":          "Walmart",
	"warnerbros":       "Warner Bros. Discovery",
	"workday":          "Workday",
	"x":                "X (Twitter)",
	"xpanse":           "Xpanse",
	"zoom":             "Zoom",
}

// CompanyDisplayName maps a source slug or free-form company name to its
// display form. Unknown names get each lowercase word capitalized; words that
// already carry capitals are kept as written.
func CompanyDisplayName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	if display, ok := companyNames[strings.ToLower(trimmed)]; ok {
		return display
	}

	words := strings.Fields(trimmed)
	for i, w := range words {
		if strings.ToLower(w) != w {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Employment types kept in the store.
const (
	EmploymentFullTime   = "full-time"
	EmploymentPartTime   = "part-time"
	EmploymentContract   = "contract"
	EmploymentInternship = "internship"
	EmploymentTemporary  = "temporary"
)

// NormalizeEmploymentType folds source spellings (FULL_TIME, "Full time",
// "Intern") into the closed vocabulary. Unknown values become empty.
func NormalizeEmploymentType(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.NewReplacer("_", " ", "-", " ").Replace(v)
	v = strings.Join(strings.Fields(v), " ")

	switch {
	case v == "":
		return ""
	case strings.Contains(v, "intern"), strings.Contains(v, "co op"), strings.Contains(v, "coop"):
		return EmploymentInternship
	case strings.Contains(v, "part time"), strings.Contains(v, "parttime"):
		return EmploymentPartTime
	case strings.Contains(v, "full time"), strings.Contains(v, "fulltime"), v == "regular", v == "permanent":
		return EmploymentFullTime
	case strings.Contains(v, "contract"), strings.Contains(v, "contractor"), strings.Contains(v, "freelance"):
		return EmploymentContract
	case strings.Contains(v, "temp"), strings.Contains(v, "seasonal"):
		return EmploymentTemporary
	default:
		return ""
	}
}
