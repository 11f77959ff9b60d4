package taxonomy

// DefaultName identifies the built-in taxonomy in logs and /health.
const DefaultName = "builtin-india-tech"

// Default returns a compiled copy of the built-in taxonomy.
func Default() *Taxonomy {
	t := &Taxonomy{
		Name:                 DefaultName,
		Skills:               append([]string(nil), defaultSkills...),
		EducationKeywords:    append([]string(nil), defaultEducation...),
		Synonyms:             copyStringSliceMap(defaultSynonyms),
		Regions:              copyStringSliceMap(defaultRegions),
		Sectors:              copySectors(defaultSectors),
		SectorAliases:        copyStringMap(defaultSectorAliases),
		DefaultSector:        "technology",
		RemoteKeywords:       []string{"remote", "work from home", "wfh"},
		NoPreferenceKeywords: []string{"any", "anywhere"},
		RoleCategories:       copyCategories(defaultRoleCategories),
	}
	// The built-in data is known-good.
	_ = t.Compile()
	return t
}

var defaultSkills = []string{
	"python", "java", "javascript", "typescript", "c++", "c#", "c", "r", "go", "rust",
	"swift", "kotlin", "react", "reactjs", "angular", "vue", "vuejs", "nextjs", "nodejs",
	"node.js", "express", "django", "flask", "fastapi", "spring", "springboot", "laravel",
	"rails", "ruby on rails", "html", "css", "sass", "bootstrap", "tailwind", "jquery",
	"sql", "mysql", "postgresql", "mongodb", "redis", "sqlite", "oracle", "firebase",
	"supabase", "machine learning", "deep learning", "nlp", "artificial intelligence",
	"ai", "ml", "data science", "tensorflow", "pytorch", "keras", "scikit-learn",
	"pandas", "numpy", "matplotlib", "seaborn", "docker", "kubernetes", "aws", "azure",
	"gcp", "google cloud", "linux", "git", "github", "gitlab", "rest api", "graphql",
	"microservices", "devops", "ci/cd", "jenkins", "terraform", "ansible", "android",
	"ios", "flutter", "react native", "mobile development", "excel", "powerbi",
	"tableau", "power bi", "data analysis", "data visualization", "photoshop",
	"illustrator", "figma", "ui/ux", "design", "video editing", "digital marketing",
	"seo", "social media", "content writing", "copywriting", "autocad", "solidworks",
	"matlab", "embedded systems", "iot", "arduino", "raspberry pi", "blockchain",
	"solidity", "web3", "cybersecurity", "networking", "ethical hacking",
}

// Order matters: the first hit wins.
var defaultEducation = []string{
	"bachelor", "master", "b.tech", "m.tech", "b.e", "m.e", "bca", "mca",
	"bsc", "msc", "phd", "diploma", "12th", "10th",
}

var defaultSynonyms = map[string][]string{
	"javascript":       {"js", "nodejs", "react", "typescript", "express"},
	"python":           {"py", "django", "flask", "pandas", "numpy"},
	"java":             {"spring", "j2ee", "springboot"},
	"database":         {"sql", "mysql", "mongodb", "postgresql", "postgres"},
	"design":           {"figma", "ui/ux", "photoshop", "illustrator", "adobe"},
	"machine learning": {"ml", "ai", "deep learning", "nlp", "tensorflow", "pytorch"},
}

var defaultRegions = map[string][]string{
	"tamil nadu": {
		"namakkal", "salem", "erode", "trichy", "tiruchirappalli", "coimbatore", "chennai",
		"madurai", "vellore", "thoothukudi", "tirunelveli", "thanjavur", "dindigul", "karur",
		"tiruppur", "hosur",
	},
	"karnataka": {
		"bangalore", "bengaluru", "mysore", "mysuru", "mangalore", "mangaluru", "hubli",
		"dharwad", "belgaum",
	},
	"maharashtra":    {"mumbai", "pune", "nagpur", "nashik", "aurangabad", "thane", "navi mumbai", "vashi"},
	"telangana":      {"hyderabad", "warangal", "secunderabad", "nizamabad"},
	"andhra pradesh": {"visakhapatnam", "vizag", "vijayawada", "guntur", "nellore", "tirupati"},
	"delhi ncr": {
		"delhi", "new delhi", "gurgaon", "gurugram", "noida", "greater noida", "ghaziabad",
		"faridabad",
	},
	"kerala":      {"kochi", "trivandrum", "thiruvananthapuram", "kozhikode", "thrissur"},
	"gujarat":     {"ahmedabad", "surat", "vadodara", "baroda", "rajkot", "gandhinagar"},
	"west bengal": {"kolkata", "howrah", "durgapur", "siliguri"},
	"rajasthan":   {"jaipur", "jodhpur", "udaipur", "kota", "ajmer"},
}

var defaultSectors = map[string]SectorKeywords{
	"technology": {
		Include: []string{
			"software", "developer", "web", "app", "it", "technical", "data", "coder",
			"engineer", "ai", "ml", "frontend", "backend", "fullstack", "python", "java",
			"react", "node",
		},
		Exclude: []string{"marketing", "sales", "seo", "recruitment", "hr", "acquisition"},
	},
}

var defaultSectorAliases = map[string]string{
	"technical": "technology",
	"tech":      "technology",
	"it":        "technology",
}

var defaultRoleCategories = []RoleCategory{
	{
		Name: "web",
		Keywords: []string{
			"web", "frontend", "front-end", "front end", "backend", "back-end", "full stack",
			"full-stack", "fullstack", "react", "angular", "node", "javascript",
		},
		Roadmap: RoadmapTemplate{
			Summary: "Ship a {skill} feature end to end.",
			Days: []DayTemplate{
				{
					Topic:  "Docs Deep Dive",
					Action: "Work through the {skill} guides on MDN and rebuild one example from scratch",
					Link:   "https://developer.mozilla.org/en-US/search?q={query}",
				},
				{
					Topic:  "Portfolio Build",
					Action: "Add a {skill} powered page to a deployed portfolio project",
				},
			},
		},
	},
	{
		Name: "ai-data",
		Keywords: []string{
			"ai", "ml", "machine learning", "deep learning", "data", "analyst", "analytics",
			"nlp", "scientist", "vision",
		},
		Roadmap: RoadmapTemplate{
			Summary: "Turn {skill} into a measurable result.",
			Days: []DayTemplate{
				{
					Topic:  "Guided Notebook",
					Action: "Complete a Kaggle notebook that applies {skill} to a public dataset",
					Link:   "https://www.kaggle.com/search?q={query}",
				},
				{
					Topic:  "Model Showcase",
					Action: "Publish a small {skill} experiment with a clear metric and a short write-up",
				},
			},
		},
	},
	{
		Name: "marketing-sales",
		Keywords: []string{
			"marketing", "sales", "seo", "content", "social media", "brand",
			"business development", "growth",
		},
		Roadmap: RoadmapTemplate{
			Summary: "Prove {skill} with numbers.",
			Days: []DayTemplate{
				{
					Topic:  "Playbook Study",
					Action: "Study two {skill} case studies and note the tactics that moved metrics",
					Link:   "https://www.youtube.com/results?search_query={query}+case+study",
				},
				{
					Topic:  "Campaign Mock",
					Action: "Draft a one-page {skill} campaign plan for a real brand",
				},
			},
		},
	},
	{
		Name: GenericCategory,
		Roadmap: RoadmapTemplate{
			Summary: "Bridge the gap for {skill}.",
			Days: []DayTemplate{
				{
					Topic:  "Skill Sync",
					Action: "Master the core principles of {skill} via YouTube tutorials",
					Link:   "https://www.youtube.com/results?search_query=learn+{query}",
				},
				{
					Topic:  "Project Proof",
					Action: "Build a real-world {skill} solution to showcase your expertise",
				},
			},
		},
	},
}

func copyStringSliceMap(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copySectors(in map[string]SectorKeywords) map[string]SectorKeywords {
	out := make(map[string]SectorKeywords, len(in))
	for k, v := range in {
		out[k] = SectorKeywords{
			Include: append([]string(nil), v.Include...),
			Exclude: append([]string(nil), v.Exclude...),
		}
	}
	return out
}

func copyCategories(in []RoleCategory) []RoleCategory {
	out := make([]RoleCategory, len(in))
	for i, c := range in {
		days := append([]DayTemplate(nil), c.Roadmap.Days...)
		out[i] = RoleCategory{
			Name:     c.Name,
			Keywords: append([]string(nil), c.Keywords...),
			Roadmap:  RoadmapTemplate{Summary: c.Roadmap.Summary, Days: days},
		}
	}
	return out
}
