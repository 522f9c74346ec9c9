package extractor

import (
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// titleVocabulary is the fixed job-title keyword list matched against page
// text, both exactly and fuzzily.
var titleVocabulary = []string{
	"CEO", "CTO", "CFO", "COO", "President", "Director", "Chief", "Strategist", "Logistics",
	"Manager", "Engineer", "Developer", "Designer", "Analyst", "Specialist", "Supply Chain",
	"Coordinator", "Administrator", "Supervisor", "Lead", "Head", "VP", "Production",
	"Pilot", "Technician", "Scientist", "Inspector", "Consultant", "Architect", "Assistant",
	"Associate", "Operator", "Instructor", "Planner", "Estimator", "Fabricator",
	"Assembler", "Machinist", "Welder", "Mechanic", "Tester", "Trainer", "Project",
	"Marketing", "Systems", "Avionics", "Researcher", "Flight", "Manufacturing",
	"Investigator", "Quality", "Assurance", "Service", "Support", "Relations", "Compliance",
	"Electrical", "IT", "Structural", "Mechanical", "Aerospace", "Business", "Sales", "HR",
	"Recruiter", "Recruitment", "Materials", "Safety", "Reliability", "Research",
	"Field Service", "Cybersecurity", "Ordnance", "Legal Counsel", "Maintenance",
	"Agent", "Human Resources", "Procurement", "Operations", "Business Development",
	"Integration", "Mission", "Payload", "Propulsion", "Regulatory Affairs",
	"Internal Affairs", "External Affairs", "Public Relations", "Acquisition", "Configuration",
	"Risk", "Test", "Calibration", "Inventory", "Contractor", "Talent", "Training", "Officer",
	"Compliance Officer", "Legal Advisor", "Technical Lead", "Data Scientist", "Data Engineer",
	"Product Manager", "Product Owner", "Program Manager", "Scrum Master", "Product Designer",
	"User Experience", "UX", "UI", "Security", "Infrastructure", "DevOps", "Cloud", "AI",
	"Machine Learning", "Artificial Intelligence", "Big Data", "Data Analyst", "Data Architect",
	"Solutions Architect", "Enterprise Architect", "Chief Information Officer", "CIO",
	"Chief Security Officer", "CSO", "Chief Data Officer", "CDO", "Chief Technology Officer",
	"Chief Marketing Officer", "CMO", "Chief Operations Officer", "Chief Revenue Officer", "CRO",
	"Chief Financial Officer", "Financial Analyst", "Investment Analyst", "Portfolio Manager",
	"Account Manager", "Account Executive", "Sales Executive", "Sales Manager", "Sales Director",
	"Customer Success", "Customer Support", "Client Services", "Partner Manager", "Channel Manager",
	"Vendor Manager", "Supplier Manager", "Procurement Specialist", "Logistics Coordinator", "Logistics Manager",
	"Supply Chain Manager", "Supply Chain Analyst", "Material Planner", "Material Manager", "Material Coordinator",
	"Warehouse Manager", "Warehouse Supervisor", "Operations Manager", "Operations Coordinator",
	"Operations Analyst", "Operations Director", "Human Resources Manager", "HR Coordinator", "HR Analyst",
	"Talent Acquisition", "Learning and Development", "L&D", "Employee Relations", "Compensation and Benefits",
	"Payroll Specialist", "Payroll Manager", "Risk Management", "Compliance Manager", "Internal Auditor",
	"External Auditor", "Financial Controller", "Finance Director", "Finance Manager", "Budget Analyst",
	"Financial Planner", "Business Analyst", "Business Intelligence", "BI", "BI Analyst", "IT Manager",
	"IT Director", "Chief Digital Officer", "Digital Transformation", "Digital Marketing", "SEO", "SEM",
	"Content Manager", "Content Strategist", "Content Creator", "Social Media Manager", "Social Media Strategist",
	"Creative Director", "Art Director", "Copywriter", "Content Writer", "Editor", "Proofreader", "Technical Writer",
	"Software Engineer", "Software Developer", "Frontend Developer", "Backend Developer", "Full Stack Developer",
	"Mobile Developer", "iOS Developer", "Android Developer", "Web Developer", "Game Developer",
	"Embedded Systems Engineer", "Hardware Engineer", "Firmware Engineer", "Network Engineer",
	"Systems Administrator", "IT Support", "Help Desk", "Technical Support", "Customer Support Engineer",
	"Service Desk", "Field Technician", "Site Reliability Engineer", "Security Analyst", "Security Engineer",
	"Penetration Tester", "Ethical Hacker", "Security Consultant", "Security Architect", "Compliance Analyst",
	"Regulatory Compliance", "Data Protection Officer", "DPO", "General Counsel", "Paralegal", "Legal Assistant",
	"Litigation Support", "Contract Manager", "Contract Administrator", "Patent Agent", "Patent Attorney",
	"Trademark Attorney", "Real Estate Manager", "Property Manager", "Facility Manager", "Maintenance Technician",
	"Maintenance Manager", "Facilities Coordinator", "Building Services", "Environmental Health and Safety",
	"EHS", "Safety Officer", "Safety Manager", "HSE", "Health and Safety", "Construction Manager",
	"Construction Engineer", "Site Manager", "Site Engineer", "Project Coordinator", "Project Manager",
	"Senior Project Manager", "Program Director", "PMO", "Change Manager", "Organizational Change",
	"Transformation Manager", "Business Transformation", "Business Process Analyst", "Process Engineer",
	"Continuous Improvement", "Lean Manufacturing", "Six Sigma", "Agile Coach", "Product Director", "R&D",
	"Research and Development", "Innovation Manager", "Innovation Director", "Principal Engineer",
	"Senior Engineer", "Lead Engineer", "Field Engineer", "Field Service Engineer", "Applications Engineer",
	"Application Support", "Technical Account Manager", "TAM", "Customer Engineer", "Customer Success Manager",
	"Customer Experience", "CX", "Client Relations", "Client Success", "Business Development Manager",
	"BDM", "Sales Engineer", "Pre-Sales", "Post-Sales", "Technical Sales", "Solution Engineer",
	"Solution Architect", "Solution Consultant", "Implementation Specialist", "Implementation Manager",
	"Customer Implementation", "Customer Onboarding", "Customer Training", "Training Manager", "L&D Manager",
	"Learning Specialist", "Talent Development", "Employee Development", "Organizational Development", "OD",
	"HR Business Partner", "HR Generalist", "HR Specialist", "HR Advisor", "HR Consultant", "HR Director",
	"Chief People Officer", "CPO", "People Operations", "People Manager", "People Director", "Talent Manager",
	"Recruitment Manager", "Recruitment Consultant", "Headhunter", "Executive Search", "Talent Scout",
	"Recruitment Specialist", "Resourcing", "Staffing", "Workforce Planning", "Workforce Manager", "HRIS",
	"HR Information Systems", "HR Systems", "HR Technology", "Compensation Analyst", "Benefits Manager",
	"Reward Analyst", "Reward Manager", "Benefits Analyst", "Employee Benefits", "Labor Relations",
	"Industrial Relations", "Union Representative", "Employee Engagement", "Employee Experience",
	"Wellness Manager", "Wellbeing Manager", "Corporate Social Responsibility", "CSR", "Diversity and Inclusion",
	"D&I", "Diversity Officer", "Inclusion Officer", "Ethics Officer", "Code of Conduct", "Governance",
	"Board Director", "Board Member", "Non-Executive Director", "Trustee", "Chairperson", "Vice Chairperson",
	"Board Secretary", "Audit Committee", "Remuneration Committee", "Nomination Committee", "Risk Committee",
	"Governance Committee", "Advisory Board", "Technical Advisor", "Industry Expert", "Consulting Engineer",
	"Senior Consultant", "Management Consultant", "Strategy Consultant", "Advisory Consultant",
	"Business Consultant", "Financial Consultant", "IT Consultant", "Technology Consultant", "Systems Consultant",
	"Engineering Consultant", "Project Consultant", "Sales Consultant", "Marketing Consultant", "Training Consultant",
	"Learning Consultant", "Development Consultant", "Organizational Consultant", "Operations Consultant", "Process Consultant",
	"Change Consultant", "Transformation Consultant", "Lean Consultant", "Six Sigma Consultant", "Agile Consultant",
	"Scrum Consultant", "Product Consultant", "Program Consultant", "Innovation Consultant", "Research Consultant",
	"Data Consultant", "Compliance Consultant", "Regulatory Consultant", "Legal Consultant", "Contracts Manager",
	"Contracts Specialist", "Bid Manager", "Proposal Manager", "Procurement Officer", "Procurement Manager",
	"Purchasing Manager", "Supply Chain Director", "Logistics Director", "Inventory Manager", "Stock Manager",
	"Materials Manager", "Demand Planner", "Demand Manager", "Factory Manager", "Manufacturing Manager",
	"Production Manager", "Production Supervisor", "Production Coordinator", "Maintenance Supervisor",
	"Maintenance Engineer", "Reliability Engineer", "Asset Manager", "Asset Engineer", "Plant Manager",
	"Facilities Manager",
}

// fuzzyThreshold is the minimum similarity (0-100 scale) for a fuzzy match
// to count. The matching is intentionally approximate; the threshold and the
// 2-4 word window sizes are part of the strategy's contract.
const fuzzyThreshold = 30.0

// fuzzyScanWordLimit caps how many words of the input the fuzzy window scan
// covers, bounding the worst case on bodies near the fetch size cap. The
// exact matcher still scans the full text.
const fuzzyScanWordLimit = 2000

// multiWordVocabulary holds the vocabulary entries targeted by the fuzzy
// matcher, pre-lowered. Single-word entries are left to the exact matcher.
var multiWordVocabulary = buildMultiWordVocabulary()

type vocabEntry struct {
	entry string
	lower string
}

func buildMultiWordVocabulary() []vocabEntry {
	var out []vocabEntry
	for _, v := range titleVocabulary {
		if strings.Contains(v, " ") {
			out = append(out, vocabEntry{entry: v, lower: strings.ToLower(v)})
		}
	}
	return out
}

// titlePattern matches any vocabulary entry as a whole word, longest
// alternative first so "Supply Chain Manager" wins over "Manager".
var titlePattern = buildTitlePattern()

func buildTitlePattern() *regexp.Regexp {
	sorted := make([]string, len(titleVocabulary))
	copy(sorted, titleVocabulary)
	// Longest first: regexp alternation is leftmost-match, not
	// longest-match.
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			if len(sorted[j]) > len(sorted[i]) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	quoted := make([]string, len(sorted))
	for i, kw := range sorted {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// TitleExtractor finds job titles by exact vocabulary match plus a fuzzy
// sliding-window match for near-misses ("Snr Project Mgr").
type TitleExtractor struct {
	metric *metrics.Levenshtein
}

// NewTitleExtractor creates a TitleExtractor.
func NewTitleExtractor() *TitleExtractor {
	return &TitleExtractor{metric: metrics.NewLevenshtein()}
}

// Name returns the strategy name.
func (e *TitleExtractor) Name() string {
	return "title"
}

// Extract reports exact vocabulary matches at confidence 1.0 and fuzzy
// matches above the threshold at confidence similarity/100.
func (e *TitleExtractor) Extract(text string) []model.Fact {
	var facts []model.Fact

	exact := make(map[string]bool)
	for _, m := range titlePattern.FindAllString(text, -1) {
		if exact[m] {
			continue
		}
		exact[m] = true
		facts = append(facts, model.Fact{
			Type:       model.FactTitle,
			Value:      m,
			Confidence: 1.0,
		})
	}

	for vocab, sim := range e.fuzzyMatches(text) {
		// An exact hit for the same vocabulary entry supersedes the
		// fuzzy one.
		if exact[vocab] {
			continue
		}
		facts = append(facts, model.Fact{
			Type:       model.FactTitle,
			Value:      vocab,
			Confidence: sim / 100.0,
		})
	}

	return facts
}

// fuzzyMatches slides 2-4 word windows over the text and scores each window
// against the multi-word vocabulary, keeping the best similarity per
// vocabulary entry when it clears the threshold. The scan is capped at
// fuzzyScanWordLimit words and windows whose length alone rules out a match
// skip the similarity computation.
func (e *TitleExtractor) fuzzyMatches(text string) map[string]float64 {
	words := strings.Fields(text)
	if len(words) > fuzzyScanWordLimit {
		words = words[:fuzzyScanWordLimit]
	}
	best := make(map[string]float64)

	for n := 2; n <= 4; n++ {
		for i := 0; i+n <= len(words); i++ {
			window := strings.ToLower(strings.Join(words[i:i+n], " "))
			for _, vocab := range multiWordVocabulary {
				if lengthRulesOut(len(window), len(vocab.lower)) {
					continue
				}
				sim := strutil.Similarity(window, vocab.lower, e.metric) * 100
				if sim > fuzzyThreshold && sim > best[vocab.entry] {
					best[vocab.entry] = sim
				}
			}
		}
	}

	return best
}

// lengthRulesOut reports whether a length gap alone caps the similarity at
// or below the threshold: edit distance is at least the length difference,
// so similarity cannot exceed 1 - diff/maxLen.
func lengthRulesOut(a, b int) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	maxLen := a
	if b > maxLen {
		maxLen = b
	}
	if maxLen == 0 {
		return true
	}
	return (1-float64(diff)/float64(maxLen))*100 <= fuzzyThreshold
}
