// Package policy holds the geographic eligibility rules. Only jobs inside the
// service area get claimed; everything else is skipped without side effects.
package policy

// AllowedZipCodes is the service area: Chicago metro zip codes. Configuration
// data, maintained by hand — add or remove codes as coverage changes.
var AllowedZipCodes = []string{
	"60004", "60005", "60007", "60008", "60016", "60018", "60022", "60025",
	"60026", "60029", "60043", "60053", "60056", "60062", "60067", "60068",
	"60070", "60074", "60076", "60077", "60090", "60091", "60093", "60101",
	"60104", "60106", "60126", "60130", "60131", "60137", "60143", "60148",
	"60153", "60154", "60155", "60160", "60162", "60163", "60164", "60165",
	"60171", "60176", "60181", "60191", "60201", "60202", "60203", "60302",
	"60304", "60305", "60402", "60513", "60514", "60515", "60516", "60517",
	"60521", "60523", "60525", "60526", "60527", "60532", "60534", "60546",
	"60558", "60559", "60561", "60601", "60602", "60603", "60604", "60605",
	"60606", "60607", "60608", "60610", "60611", "60612", "60613", "60614",
	"60616", "60618", "60622", "60623", "60624", "60625", "60626", "60630",
	"60631", "60634", "60639", "60640", "60641", "60642", "60644", "60645",
	"60646", "60647", "60651", "60653", "60654", "60656", "60657", "60659",
	"60660", "60661", "60706", "60707", "60712", "60714", "60804",
}

var allowedSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AllowedZipCodes))
	for _, z := range AllowedZipCodes {
		m[z] = struct{}{}
	}
	return m
}()

// Allowed reports whether zip is inside the service area. Exact string match,
// no normalization; an empty zip is never allowed.
func Allowed(zip string) bool {
	if zip == "" {
		return false
	}
	_, ok := allowedSet[zip]
	return ok
}
