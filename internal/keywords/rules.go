package keywords

import "jobai-go/internal/types"

// titleRule adds its titles when the guard category is non-empty and the trigger holds.
type titleRule struct {
	name    string
	guard   func(s types.SkillSet) []string
	trigger func(s types.SkillSet) bool
	titles  []string
}

func languages(s types.SkillSet) []string { return s.ProgrammingLanguages }
func webTech(s types.SkillSet) []string   { return s.WebTechnologies }
func mobile(s types.SkillSet) []string    { return s.MobileDevelopment }
func dataAI(s types.SkillSet) []string    { return s.DataScienceAI }
func cloud(s types.SkillSet) []string     { return s.CloudDevOps }
func databases(s types.SkillSet) []string { return s.Databases }

func has(skills ...string) func(types.SkillSet) bool {
	return func(s types.SkillSet) bool {
		for _, skill := range skills {
			if s.Contains(skill) {
				return true
			}
		}
		return false
	}
}

func always(types.SkillSet) bool { return true }

// titleRules is the canonical rule order. The per-language rule runs before these and
// is built from the detected languages, see collectTitles.
var titleRules = []titleRule{
	{"python", languages, has("Python"), []string{"Python Developer", "Backend Developer", "Python Engineer"}},
	{"java", languages, has("Java"), []string{"Java Developer", "Java Engineer", "Backend Engineer"}},
	{"javascript", languages, has("JavaScript"), []string{"JavaScript Developer", "Frontend Developer"}},

	{"web", webTech, always, []string{"Web Developer"}},
	{"react", webTech, has("React"), []string{"React Developer", "Frontend Developer", "React.js Developer", "UI Developer", "Frontend Engineer"}},
	{"angular", webTech, has("Angular"), []string{"Angular Developer", "Frontend Developer", "UI Developer"}},
	{"vue", webTech, has("Vue.js"), []string{"Vue Developer", "Frontend Developer", "Vue.js Developer"}},
	{"node", webTech, has("Node.js"), []string{"Node.js Developer", "Backend Developer", "Node Developer", "Backend Engineer", "API Developer"}},
	{"express", webTech, has("Express"), []string{"Backend Developer", "Node.js Developer"}},
	{"full_stack", webTech, func(s types.SkillSet) bool { return len(s.WebTechnologies) > fullStackThreshold },
		[]string{"Full Stack Developer", "Full Stack Engineer", "Software Engineer", "Web Developer"}},
	{"django", webTech, has("Django"), []string{"Django Developer", "Python Developer", "Backend Developer"}},
	{"flask", webTech, has("Flask"), []string{"Flask Developer", "Python Developer"}},
	{"fastapi", webTech, has("FastAPI"), []string{"FastAPI Developer", "Python Developer", "API Developer"}},
	{"spring_boot", webTech, has("Spring Boot"), []string{"Spring Boot Developer", "Java Developer"}},
	{"nextjs", webTech, has("Next.js"), []string{"Next.js Developer", "React Developer", "Full Stack Developer"}},

	{"mobile", mobile, always, []string{"Mobile Developer", "Mobile Engineer", "App Developer"}},
	{"flutter", mobile, has("Flutter"), []string{"Flutter Developer", "Flutter Engineer", "Mobile App Developer", "Cross-Platform Developer", "Dart Developer"}},
	{"react_native", mobile, has("React Native"), []string{"React Native Developer", "Mobile Developer", "Cross-Platform Developer", "Mobile Engineer"}},
	{"android", mobile, has("Android"), []string{"Android Developer", "Android Engineer", "Mobile Developer"}},
	{"ios", mobile, has("iOS"), []string{"iOS Developer", "iOS Engineer", "Mobile Developer"}},
	{"kotlin", mobile, has("Kotlin"), []string{"Kotlin Developer", "Android Developer"}},
	{"swift", mobile, has("Swift"), []string{"Swift Developer", "iOS Developer"}},

	{"machine_learning", dataAI, has("Machine Learning"), []string{"Machine Learning Engineer", "ML Engineer", "AI Engineer", "Data Scientist", "ML Developer"}},
	{"deep_learning", dataAI, has("Deep Learning"), []string{"Deep Learning Engineer", "AI Engineer", "ML Engineer"}},
	{"data_science", dataAI, has("Data Science"), []string{"Data Scientist", "Data Analyst", "Data Engineer", "ML Engineer", "Analytics Engineer"}},
	{"dl_frameworks", dataAI, has("TensorFlow", "PyTorch"), []string{"ML Engineer", "AI Developer", "Deep Learning Engineer"}},
	{"nlp", dataAI, has("NLP"), []string{"NLP Engineer", "ML Engineer", "AI Developer"}},
	{"computer_vision", dataAI, has("Computer Vision"), []string{"Computer Vision Engineer", "AI Engineer"}},
	{"mlops", dataAI, has("MLOps"), []string{"MLOps Engineer", "ML Engineer", "DevOps Engineer"}},

	{"aws", cloud, has("AWS"), []string{"AWS Developer", "Cloud Engineer", "DevOps Engineer", "Cloud Architect", "Solutions Architect"}},
	{"azure", cloud, has("Azure"), []string{"Azure Developer", "Cloud Engineer", "DevOps Engineer"}},
	{"gcp", cloud, has("GCP", "Google Cloud"), []string{"GCP Developer", "Cloud Engineer", "DevOps Engineer"}},
	{"containers", cloud, has("Docker", "Kubernetes"), []string{"DevOps Engineer", "Site Reliability Engineer", "SRE", "Platform Engineer", "Infrastructure Engineer"}},
	{"cicd", cloud, has("CI/CD"), []string{"DevOps Engineer", "Build Engineer", "Release Engineer"}},
	{"terraform", cloud, has("Terraform"), []string{"DevOps Engineer", "Infrastructure Engineer", "Cloud Engineer"}},

	{"mongodb", databases, has("MongoDB"), []string{"Backend Developer", "Database Developer"}},
	{"sql", databases, has("PostgreSQL", "MySQL"), []string{"Backend Developer", "Database Developer", "Database Engineer"}},
}

// fallbackTitles is used when no rule produced a title.
var fallbackTitles = []string{
	"Software Developer", "Software Engineer", "Application Developer",
	"Programmer", "Software Development Engineer",
}
