package pagination

import "strings"

// LikeEscape is the escape character ContainsPattern uses. Predicates must
// declare it: "col LIKE ? ESCAPE '!'".
const LikeEscape = "!"

var likeEscaper = strings.NewReplacer(
	LikeEscape, LikeEscape+LikeEscape,
	"%", LikeEscape+"%",
	"_", LikeEscape+"_",
)

// ContainsPattern builds a lower case substring LIKE pattern for term. LIKE
// wildcards in term match literally.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
