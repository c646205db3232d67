package parser

import (
	"regexp"
	"strings"
)

// SkillCategory is one of the seven fixed skill taxonomies. Term order is significant:
// it decides the insertion order of AllSkills.
type SkillCategory struct {
	Key   string
	Terms []string
}

// Skill category keys, in extraction order.
const (
	CategoryProgrammingLanguages = "programming_languages"
	CategoryWebTechnologies      = "web_technologies"
	CategoryMobileDevelopment    = "mobile_development"
	CategoryDatabases            = "databases"
	CategoryCloudDevOps          = "cloud_devops"
	CategoryDataScienceAI        = "data_science_ai"
	CategoryOtherTools           = "other_tools"
)

// SkillCategories is the skill vocabulary. Kotlin and Swift are listed both as languages
// and as mobile skills.
var SkillCategories = []SkillCategory{
	{Key: CategoryProgrammingLanguages, Terms: []string{
		"Python", "Java", "JavaScript", "TypeScript", "C++", "C#", "C",
		"Ruby", "PHP", "Swift", "Kotlin", "Go", "Rust", "Scala", "R",
		"Dart", "Objective-C", "Perl", "Shell", "Bash",
	}},
	{Key: CategoryWebTechnologies, Terms: []string{
		"React", "Angular", "Vue.js", "Next.js", "Node.js", "Express",
		"Django", "Flask", "FastAPI", "Spring Boot", "ASP.NET",
		"HTML", "CSS", "SASS", "Bootstrap", "Tailwind", "jQuery",
		"GraphQL", "REST API", "WebSocket", "Redux", "MobX",
	}},
	{Key: CategoryMobileDevelopment, Terms: []string{
		"Flutter", "React Native", "Android", "iOS", "Kotlin", "Swift",
		"Xamarin", "Ionic", "Cordova",
	}},
	{Key: CategoryDatabases, Terms: []string{
		"MongoDB", "PostgreSQL", "MySQL", "Redis", "Cassandra",
		"DynamoDB", "Firebase", "SQLite", "Oracle", "SQL Server",
		"Elasticsearch", "Neo4j",
	}},
	{Key: CategoryCloudDevOps, Terms: []string{
		"AWS", "Azure", "GCP", "Google Cloud", "Docker", "Kubernetes",
		"Jenkins", "CI/CD", "Git", "GitHub", "GitLab", "Terraform",
		"Ansible", "Chef", "Puppet", "Linux", "Nginx", "Apache",
	}},
	{Key: CategoryDataScienceAI, Terms: []string{
		"Machine Learning", "Deep Learning", "Data Science", "TensorFlow",
		"PyTorch", "Keras", "Scikit-learn", "Pandas", "NumPy",
		"Matplotlib", "Seaborn", "NLP", "Computer Vision", "MLOps",
		"OpenCV", "NLTK", "SpaCy", "Hugging Face",
	}},
	{Key: CategoryOtherTools, Terms: []string{
		"Agile", "Scrum", "Jira", "Postman", "VS Code", "IntelliJ",
		"Figma", "Adobe XD", "Photoshop", "Microservices", "Grafana",
		"Prometheus", "Kafka", "RabbitMQ", "gRPC", "OAuth", "JWT",
	}},
}

// skillMatchers holds one whole-word matcher per term, keyed by the canonical term.
// Matchers run against lower-cased text.
var skillMatchers = buildSkillMatchers()

func buildSkillMatchers() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp)
	for _, cat := range SkillCategories {
		for _, term := range cat.Terms {
			if _, ok := m[term]; ok {
				continue
			}
			m[term] = regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(term)) + `\b`)
		}
	}
	return m
}

// Contact patterns.
var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

	// Tried in order; the first pattern with any match wins.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\+91[-.\s]?\d{10}`),
		regexp.MustCompile(`\d{10}`),
	}

	nameRejectPattern = regexp.MustCompile(`[@\d]`)
	linkedInPattern   = regexp.MustCompile(`(?i)(?:linkedin\.com/in/|linkedin\.com/pub/)([A-Za-z0-9_-]+)`)
	gitHubPattern     = regexp.MustCompile(`(?i)github\.com/([A-Za-z0-9_-]+)`)
	locationPattern   = regexp.MustCompile(`(?i)\b(?:Mumbai|Delhi|Bangalore|Bengaluru|Hyderabad|Chennai|Kolkata|Pune|Ahmedabad|Jaipur|Chandigarh|Noida|Gurgaon|India)\b`)
)

// Experience patterns. Direct-mention and date-range patterns run on lower-cased text,
// position patterns on the original text.
var (
	directYearsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+\.?\d*)\+?\s*(?:years?|yrs?)\s+(?:of\s+)?(?:work\s+)?experience`),
		regexp.MustCompile(`(?:work\s+)?experience[:\s]+(\d+\.?\d*)\+?\s*(?:years?|yrs?)`),
	}

	// The separator is a character class: any of - – — t o.
	dateRangePattern = regexp.MustCompile(`(?i)((?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4})\s*[-–—to]\s*((?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4}|present|current)`)

	positionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`([A-Z][a-z\s]+(?:Engineer|Developer|Manager|Lead|Architect|Analyst|Designer|Consultant))`),
		regexp.MustCompile(`(?:at|@)\s+([A-Z][A-Za-z\s&.,]+(?:Ltd|Inc|Corp|Pvt|LLC)?)`),
	}
)

// Education patterns. Degree classes are tried in order: bachelor, master, doctorate.
var (
	degreePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(B\.?Tech|Bachelor|B\.?E\.?|B\.?S\.?|B\.?Sc)`),
		regexp.MustCompile(`(?i)(M\.?Tech|Master|M\.?E\.?|M\.?S\.?|M\.?Sc|MBA)`),
		regexp.MustCompile(`(?i)(Ph\.?D|Doctorate)`),
	}
	yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	cgpaPattern = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(?:CGPA|GPA|%)`)
)

// projectSplitPattern splits a projects block on bullet markers or blank lines.
var projectSplitPattern = regexp.MustCompile(`\n\s*[•\-\*]\s*|\n{2,}`)

// Job preference patterns, run on lower-cased text.
var (
	jobTypePatterns = []struct {
		label   string
		pattern *regexp.Regexp
	}{
		{"Full-time", regexp.MustCompile(`\bfull[- ]?time\b`)},
		{"Part-time", regexp.MustCompile(`\bpart[- ]?time\b`)},
		{"Contract", regexp.MustCompile(`\bcontract\b`)},
		{"Internship", regexp.MustCompile(`\binternship\b`)},
	}

	remotePattern = regexp.MustCompile(`\b(remote|work from home|wfh)\b`)

	// First matching pattern wins; its full match is stored verbatim.
	salaryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*(?:-|to)\s*(\d+)\s*(?:lpa|lakhs?)`),
		regexp.MustCompile(`(?:salary|compensation|ctc)[:\s]*(?:₹|rs\.?|inr)?\s*(\d+)`),
		regexp.MustCompile(`(\d+)\s*(?:lpa|lakhs?)\s*(?:expected|desired|seeking)`),
	}

	preferredLocationKeywords = []string{
		"bangalore", "bengaluru", "mumbai", "delhi", "hyderabad",
		"chennai", "pune", "kolkata", "remote", "anywhere",
	}
	preferredLocationPatterns = buildWordPatterns(preferredLocationKeywords)
)

func buildWordPatterns(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}
