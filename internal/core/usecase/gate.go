package usecase

import "strings"

// Admission terms. An in-domain term always wins, even when an
// off-domain term also appears; the asymmetry keeps false rejections low.
var hrTerms = []string{
	"vacation", "leave", "pto", "time off", "holiday", "sick", "absence", "day off", "days off",
	"salary", "pay", "compensation", "bonus", "raise", "payroll", "paycheck",
	"benefit", "insurance", "health", "dental", "vision", "401k", "retirement",
	"remote", "work from home", "wfh", "hybrid", "telecommute",
	"training", "onboarding", "orientation", "learning", "development", "course",
	"policy", "handbook", "guideline", "procedure",
	"hr", "human resources", "employee", "employer", "staff", "workforce",
	"hire", "recruit", "interview", "offer", "probation", "termination",
	"promotion", "review", "performance", "evaluation", "feedback",
	"harassment", "discrimination", "complaint", "grievance", "ethics",
	"expense", "reimbursement", "per diem",
	"maternity", "paternity", "parental", "fmla", "disability",
	"dress code", "attire", "uniform",
	"overtime", "hours", "schedule", "shift", "flexible",
	"referral", "transfer", "relocation",
}

var offDomainTerms = []string{
	"python", "code", "programming", "javascript", "java", "software", "bug", "debug",
	"weather", "temperature", "rain", "sunny", "forecast",
	"recipe", "cook", "bake", "food", "ingredient", "cake",
	"capital", "country", "city", "president", "politician",
	"movie", "film", "actor", "actress", "song", "music", "singer",
	"sports", "football", "soccer", "basketball", "game", "score",
	"math", "calculate", "equation", "physics", "chemistry", "biology",
	"stock", "bitcoin", "crypto", "invest", "trading",
	"car", "vehicle", "engine", "repair", "mechanic",
	"born", "birthday", "died", "age", "married", "wife", "husband",
	"translate", "language", "french", "spanish", "german", "chinese",
	"news", "war", "election", "vote", "politics",
	"quantum", "algorithm", "machine learning", "ai model",
	"history", "ancient", "king", "queen", "empire",
	"space", "planet", "star", "galaxy", "nasa",
	"animal", "dog", "cat", "pet", "zoo",
}

// IsInDomain decides whether a question belongs to the HR topic area.
// Priority: an in-domain term admits; then an off-domain term rejects;
// then fewer than 3 tokens rejects; otherwise reject. Pure, no
// retrieval or embedding cost.
func IsInDomain(question string) bool {
	lower := strings.ToLower(question)

	for _, term := range hrTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	for _, term := range offDomainTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}
	// Too-short questions carry no signal; longer ones without a
	// positive match are rejected as well.
	return false
}
