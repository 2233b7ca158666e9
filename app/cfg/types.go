package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	Port            string
	SourcesFile     string
	Concurrency     int
	RefreshInterval int
	RefreshSecret   string

	// One-shot ingestion mode
	Fetch bool
	Tier  int
	Wipe  bool

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
