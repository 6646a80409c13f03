package content

import (
	"sort"
	"strings"
)

// TeamMembersKey is the content key holding team member records.
const TeamMembersKey = "team_members"

// TeamLanguage describes which languages a team member works in.
type TeamLanguage string

const (
	TeamLanguageEnglish   TeamLanguage = "english"
	TeamLanguageSpanish   TeamLanguage = "spanish"
	TeamLanguageBilingual TeamLanguage = "bilingual"
)

// TeamLanguages lists the accepted TeamLanguage values.
func TeamLanguages() []TeamLanguage {
	return []TeamLanguage{TeamLanguageEnglish, TeamLanguageSpanish, TeamLanguageBilingual}
}

// Speaks reports whether the member can serve visitors in lang.
func (l TeamLanguage) Speaks(lang Language) bool {
	switch l {
	case TeamLanguageBilingual:
		return true
	case TeamLanguageEnglish:
		return lang == English
	case TeamLanguageSpanish:
		return lang == Spanish
	default:
		return false
	}
}

// TeamMember is a flat staff record with bilingual description fields.
type TeamMember struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Title        LocalizedText   `json:"title"`
	Bio          LocalizedText   `json:"bio"`
	Specialties  *LocalizedArray `json:"specialties,omitempty"`
	Language     TeamLanguage    `json:"language"`
	DisplayOrder int             `json:"displayOrder"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	Email        string          `json:"email,omitempty"`
}

// SortTeamMembers orders members by DisplayOrder, then by name.
func SortTeamMembers(members []TeamMember) {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].DisplayOrder != members[j].DisplayOrder {
			return members[i].DisplayOrder < members[j].DisplayOrder
		}
		return strings.ToLower(members[i].Name) < strings.ToLower(members[j].Name)
	})
}
