// Package catalog holds the static category codes, persona roles and the
// role x category weight matrix the scoring pipeline reads from.
package catalog

// Category codes.
const (
	CategoryDev     = "DEV"
	CategoryCP      = "CP"
	CategoryDesign  = "DESIGN"
	CategoryWriting = "WRITING"
	CategoryEdu     = "EDU"
	CategoryComm    = "COMM"
	CategorySoc     = "SOC"
	CategoryEnt     = "ENT"
	CategoryUncat   = "UNCAT"

	// CategoryUnknown is only used by the live stats quick lookup, it never
	// appears in the ledger.
	CategoryUnknown = "UNKNOWN"
)

// Persona roles.
const (
	RoleCS       = "CS"
	RoleDesign   = "DESIGN"
	RoleBusiness = "BUSINESS"
	RoleGeneral  = "GENERAL"
)

// LabelPrefix marks category-description entries in the app category index.
const LabelPrefix = "__label__"

var categories = []string{
	CategoryDev, CategoryCP, CategoryDesign, CategoryWriting,
	CategoryEdu, CategoryComm, CategorySoc, CategoryEnt, CategoryUncat,
}

var roles = map[string]bool{
	RoleCS:       true,
	RoleDesign:   true,
	RoleBusiness: true,
	RoleGeneral:  true,
}

// weightMatrix rows are categories, columns are persona roles.
var weightMatrix = map[string]map[string]float64{
	CategoryDev:     {RoleCS: 1.2, RoleDesign: 0.2, RoleBusiness: 0.0, RoleGeneral: 0.8},
	CategoryCP:      {RoleCS: 1.2, RoleDesign: -0.2, RoleBusiness: 0.0, RoleGeneral: 0.8},
	CategoryDesign:  {RoleCS: 0.2, RoleDesign: 1.2, RoleBusiness: 0.2, RoleGeneral: 0.8},
	CategoryWriting: {RoleCS: 0.5, RoleDesign: 0.5, RoleBusiness: 1.2, RoleGeneral: 0.8},
	CategoryEdu:     {RoleCS: 1.0, RoleDesign: 0.8, RoleBusiness: 1.0, RoleGeneral: 0.8},
	CategoryComm:    {RoleCS: 0.4, RoleDesign: 0.4, RoleBusiness: 1.0, RoleGeneral: 0.5},
	CategorySoc:     {RoleCS: -0.6, RoleDesign: -0.2, RoleBusiness: -0.6, RoleGeneral: -0.6},
	CategoryEnt:     {RoleCS: -0.8, RoleDesign: -0.8, RoleBusiness: -0.8, RoleGeneral: -0.8},
	CategoryUncat:   {RoleCS: 0.0, RoleDesign: 0.0, RoleBusiness: 0.0, RoleGeneral: 0.0},
}

// Categories returns all category codes in a stable order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// ValidRole reports whether role is a known persona role.
func ValidRole(role string) bool { return roles[role] }

// ParseRole returns role when known and GENERAL otherwise.
func ParseRole(role string) string {
	if roles[role] {
		return role
	}
	return RoleGeneral
}

// Weight looks up the weight for a category under a persona role. An unknown
// category weighs 0; an unknown role falls back to the GENERAL column.
func Weight(category, role string) float64 {
	row, ok := weightMatrix[category]
	if !ok {
		return 0
	}
	if w, ok := row[role]; ok {
		return w
	}
	return row[RoleGeneral]
}

// PositiveCategories returns every category whose weight for the role is
// strictly positive. These define "productive" time for streak purposes.
func PositiveCategories(role string) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if Weight(c, role) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Labels are the per-category description texts embedded as the similarity
// fallback tier.
var Labels = map[string]string{
	CategoryDev:     "software development programming coding IDE terminal",
	CategoryCP:      "competitive programming algorithm contest leetcode codeforces",
	CategoryDesign:  "graphic design UI UX figma illustration creative",
	CategoryWriting: "writing documentation organization notes planning",
	CategoryEdu:     "education learning course tutorial lecture academic",
	CategoryComm:    "communication messaging email chat collaboration",
	CategorySoc:     "social media feed timeline posts sharing",
	CategoryEnt:     "entertainment streaming video music gaming",
}

// SeedMapping is a known app/site to pre-embed into the index at bootstrap.
type SeedMapping struct {
	Name     string
	Category string
}

var SeedMappings = []SeedMapping{
	// DEV
	{"github.com", CategoryDev},
	{"stackoverflow.com", CategoryDev},
	{"gitlab.com", CategoryDev},
	{"VS Code", CategoryDev},
	{"code.exe", CategoryDev},
	{"Android Studio", CategoryDev},
	{"bitbucket.org", CategoryDev},
	{"docker.com", CategoryDev},
	{"npmjs.com", CategoryDev},

	// CP
	{"leetcode.com", CategoryCP},
	{"codeforces.com", CategoryCP},
	{"codechef.com", CategoryCP},
	{"hackerrank.com", CategoryCP},
	{"atcoder.jp", CategoryCP},
	{"hackerearth.com", CategoryCP},

	// DESIGN
	{"figma.com", CategoryDesign},
	{"canva.com", CategoryDesign},
	{"dribbble.com", CategoryDesign},
	{"behance.net", CategoryDesign},
	{"Adobe Photoshop", CategoryDesign},
	{"Adobe Illustrator", CategoryDesign},

	// WRITING
	{"docs.google.com", CategoryWriting},
	{"notion.so", CategoryWriting},
	{"overleaf.com", CategoryWriting},
	{"medium.com", CategoryWriting},
	{"Microsoft Word", CategoryWriting},
	{"Google Docs", CategoryWriting},

	// EDU
	{"coursera.org", CategoryEdu},
	{"khanacademy.org", CategoryEdu},
	{"edx.org", CategoryEdu},
	{"udemy.com", CategoryEdu},
	{"scholar.google.com", CategoryEdu},

	// COMM
	{"slack.com", CategoryComm},
	{"discord.com", CategoryComm},
	{"teams.microsoft.com", CategoryComm},
	{"zoom.us", CategoryComm},
	{"Gmail", CategoryComm},
	{"mail.google.com", CategoryComm},

	// SOC
	{"instagram.com", CategorySoc},
	{"twitter.com", CategorySoc},
	{"x.com", CategorySoc},
	{"facebook.com", CategorySoc},
	{"reddit.com", CategorySoc},
	{"Instagram", CategorySoc},
	{"Twitter", CategorySoc},
	{"tiktok.com", CategorySoc},
	{"snapchat.com", CategorySoc},

	// ENT
	{"youtube.com", CategoryEnt},
	{"netflix.com", CategoryEnt},
	{"twitch.tv", CategoryEnt},
	{"spotify.com", CategoryEnt},
	{"YouTube", CategoryEnt},
	{"Netflix", CategoryEnt},
	{"primevideo.com", CategoryEnt},
	{"disneyplus.com", CategoryEnt},
}

var quickCategory = func() map[string]string {
	m := make(map[string]string, len(SeedMappings))
	for _, s := range SeedMappings {
		m[s.Name] = s.Category
	}
	return m
}()

// QuickCategory is a synchronous seed-only lookup used by the live stats
// snapshot, where hitting the categorizer per open session would be too
// expensive. Unknown names report UNKNOWN.
func QuickCategory(name string) string {
	if c, ok := quickCategory[name]; ok {
		return c
	}
	return CategoryUnknown
}
