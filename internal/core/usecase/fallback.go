package usecase

import (
	"strings"

	"github.com/opryamko/hr-assistant/internal/core/domain"
)

// Canned answers used when retrieval or generation is unavailable.
// {company} is substituted with the configured company name.
// Keyword order matters: first match wins, "default" closes each mode.
type fallbackEntry struct {
	keyword  string
	response string
}

var fallbackResponses = map[domain.Mode][]fallbackEntry{
	domain.ModePolicy: {
		{"vacation", "At {company}, full-time employees receive 20-30 vacation days per year depending on tenure. Employees with 0-2 years get 20 days, 3-5 years get 25 days, and 6+ years get 30 days. Submit vacation requests through the HR Portal at least 2 weeks in advance."},
		{"remote", "{company} offers hybrid remote work: up to 3 days remote per week with manager approval. You'll receive a $500 one-time home office stipend and $75-100/month internet allowance. Core hours are 10 AM - 3 PM."},
		{"sick", "{company} employees receive 10 paid sick days per year. Notify your manager by 9 AM on the day of absence. For absences of 3+ consecutive days, a medical certificate is required."},
		{"harassment", "{company} has zero tolerance for harassment. Report incidents to your manager, HR, or the anonymous hotline. All reports are investigated promptly and confidentially."},
		{"dress", "{company} maintains a business casual dress code. Jeans are allowed on Casual Fridays. For client meetings, business professional attire is required."},
		{"default", "For detailed information about {company} HR policies, please consult the employee handbook on the HR Portal or contact HR."},
	},
	domain.ModeBenefits: {
		{"health", "{company} offers three health plans: PPO, HDHP with HSA, and HMO. Coverage includes medical, dental, and vision. {company} pays approximately 80% of premium costs. Enroll within 30 days of hire."},
		{"401k", "{company}'s 401(k) plan includes 100% employer match on the first 6% you contribute. The match vests over 4 years (25% per year)."},
		{"retirement", "{company}'s 401(k) plan includes 100% employer match on the first 6% you contribute. The match vests over 4 years."},
		{"wellness", "{company}'s wellness program includes $100/month gym reimbursement, 2 mental health days, and up to $500/year in wellness rewards."},
		{"education", "{company} offers up to $10,000/year for graduate degrees, $5,250 for undergraduate, and $3,000 for certifications. Plus $2,000/year L&D budget for conferences and courses."},
		{"default", "For questions about {company} employee benefits, contact the benefits team through the HR Portal."},
	},
	domain.ModePayroll: {
		{"payslip", "{company} payslips are available on the HR Portal by payday. We pay bi-weekly (26 pay periods). Download PDF versions for your records."},
		{"bank", "To update your bank details at {company}, submit a request through the HR Portal with your new banking information. Changes take effect within 2 pay periods."},
		{"bonus", "{company}'s annual bonus targets range from 10-25% of base salary depending on level. Bonuses are calculated based on company performance (0-150%) and individual performance (0-150%)."},
		{"salary", "{company} targets 75th percentile market rates. Salary reviews occur annually in January. Merit increases typically range from 3-8% based on performance."},
		{"default", "For {company} payroll inquiries, contact the payroll team through the HR Portal."},
	},
}

const refusalTemplate = "I'm sorry, but this question is outside my expertise as an HR assistant for {company}. I can only help with HR-related topics such as:\n\n" +
	"* Leave & PTO (vacation, sick leave, holidays)\n" +
	"* Benefits (health insurance, 401k, wellness)\n" +
	"* Payroll (salary, bonuses, expenses)\n" +
	"* Remote work policies\n" +
	"* Training & onboarding\n" +
	"* Company policies\n\n" +
	"Please ask an HR-related question!"

func refusalMessage(company string) string {
	return substituteCompany(refusalTemplate, company)
}

func fallbackAnswer(question string, mode domain.Mode, company string) string {
	entries, ok := fallbackResponses[mode]
	if !ok {
		entries = fallbackResponses[domain.ModePolicy]
	}

	lower := strings.ToLower(question)
	var fallback string
	for _, entry := range entries {
		if entry.keyword == "default" {
			fallback = entry.response
			continue
		}
		if strings.Contains(lower, entry.keyword) {
			return substituteCompany(entry.response, company)
		}
	}
	return substituteCompany(fallback, company)
}

func substituteCompany(text, company string) string {
	return strings.ReplaceAll(text, "{company}", company)
}
