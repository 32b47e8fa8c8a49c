package models

const (
	SkillLeadership    = "leadership"
	SkillCreativity    = "creativity"
	SkillTeamwork      = "teamwork"
	SkillTechnical     = "technical"
	SkillCommunication = "communication"
)

// SkillKeys is the fixed skill vector order.
var SkillKeys = []string{
	SkillLeadership,
	SkillCreativity,
	SkillTeamwork,
	SkillTechnical,
	SkillCommunication,
}

// SkillMetrics 五维能力值，同时用作活动的积分拆分 (skill split)
type SkillMetrics struct {
	Leadership    int `gorm:"not null;default:0" json:"leadership" form:"leadership" validate:"gte=0"`
	Creativity    int `gorm:"not null;default:0" json:"creativity" form:"creativity" validate:"gte=0"`
	Teamwork      int `gorm:"not null;default:0" json:"teamwork" form:"teamwork" validate:"gte=0"`
	Technical     int `gorm:"not null;default:0" json:"technical" form:"technical" validate:"gte=0"`
	Communication int `gorm:"not null;default:0" json:"communication" form:"communication" validate:"gte=0"`
}

func IsSkillKey(key string) bool {
	for _, k := range SkillKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Total sums all five dimensions.
func (s SkillMetrics) Total() int {
	return s.Leadership + s.Creativity + s.Teamwork + s.Technical + s.Communication
}

// Get returns the value for a skill key.
func (s SkillMetrics) Get(key string) (int, bool) {
	switch key {
	case SkillLeadership:
		return s.Leadership, true
	case SkillCreativity:
		return s.Creativity, true
	case SkillTeamwork:
		return s.Teamwork, true
	case SkillTechnical:
		return s.Technical, true
	case SkillCommunication:
		return s.Communication, true
	}
	return 0, false
}
