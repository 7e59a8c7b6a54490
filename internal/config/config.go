package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Cfg struct {
	Database Database
	Logger   Logger
	Gemini   Gemini
	Groq     Groq
	Browser  Browser
	Search   Search
	Profile  Profile
	Policy   Policy
	Pacing   Pacing
	Server   Server
	Paths    Paths
}

type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Enabled сообщает, настроен ли журнал заявок в PostgreSQL.
func (d Database) Enabled() bool {
	return d.Host != ""
}

// DSN - строка подключения для gorm/pgx.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// URL - та же база в виде postgres:// для golang-migrate.
func (d Database) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

type Logger struct {
	Env   string
	Level string
	File  string
}

type Gemini struct {
	APIKey            string
	Model             string
	// UseForCV разрешает генеративные ответы на основе текста резюме.
	UseForCV          bool
	RequestsPerMinute int
}

type Groq struct {
	APIKey  string
	Model   string
	BaseURL string
}

type Browser struct {
	Display      string
	Headless     bool
	UserDataDir  string
	BrowsersPath string
	Locale       string
}

type Search struct {
	Keywords string
	Country  string
	URL      string
}

// Profile содержит данные кандидата, которые подставляются в форму.
type Profile struct {
	Email          string
	FirstName      string
	LastName       string
	City           string
	Gender         string
	CurrentCompany string
	CurrentTitle   string
	NoticePeriod   string
	YearsDefault   string
	Hybrid         string
	Certifications []string
}

// Policy собирает все ответы "по умолчанию", которые раньше были захардкожены.
type Policy struct {
	WorkAuthorization    string
	NeedSponsorship      string
	AuthorizationCountry string
	LegalStatus          string
	Pronouns             string
	GenderDefault        string
	BackgroundCheck      string
	Affirmative          string
	ReferralSource       string
	TextFallback         string
	SalaryRole           string
	SalaryDefault        string
	RatingStrong         string
	RatingDefault        string
}

type Pacing struct {
	MinDelaySec float64
	MaxDelaySec float64
}

type Server struct {
	Host string
	Port string
}

type Paths struct {
	ResumePath      string
	CVPath          string
	OverridesFile   string
	UploadDir       string
	NoticeDir       string
	FormAnswersFile string // JSON с готовыми ответами; если задан, подача идёт через FillInitialForm
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     env("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
		},
		Logger: Logger{
			Env:   env("ENV", "dev"),
			Level: env("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
		Gemini: Gemini{
			APIKey:            os.Getenv("GEMINI_API_KEY"),
			Model:             env("GEMINI_MODEL", "gemini-2.0-flash"),
			UseForCV:          envBoolDefault("USE_GEMINI_FOR_CV", true),
			RequestsPerMinute: envInt("LLM_REQUESTS_PER_MINUTE", 15),
		},
		Groq: Groq{
			APIKey:  os.Getenv("GROQ_API_KEY"),
			Model:   env("GROQ_MODEL", "llama-3.3-70b-versatile"),
			BaseURL: env("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		},
		Browser: Browser{
			Display:      os.Getenv("DISPLAY"),
			Headless:     envBool("HEADLESS"),
			UserDataDir:  env("USER_DATA_DIR", "./userdata"),
			BrowsersPath: env("PLAYWRIGHT_BROWSERS_PATH", ""),
			Locale:       env("BROWSER_LOCALE", "fr-FR"),
		},
		Search: Search{
			Keywords: env("JOB_SEARCH_KEYWORDS", "software engineer java"),
			Country:  env("JOB_SEARCH_COUNTRY", "Canada"),
			URL:      os.Getenv("LINKEDIN_JOB_SEARCH_URL"),
		},
		Profile: Profile{
			Email:          os.Getenv("EASY_APPLY_EMAIL"),
			FirstName:      os.Getenv("EASY_APPLY_FIRST_NAME"),
			LastName:       os.Getenv("EASY_APPLY_LAST_NAME"),
			City:           env("DEFAULT_LOCATION_CITY", "Casablanca"),
			Gender:         os.Getenv("EASY_APPLY_GENDER"),
			CurrentCompany: os.Getenv("EASY_APPLY_CURRENT_COMPANY"),
			CurrentTitle:   os.Getenv("EASY_APPLY_CURRENT_TITLE"),
			NoticePeriod:   env("NOTICE_PERIOD_DEFAULT", "3 months"),
			YearsDefault:   env("EASY_APPLY_YEARS_DEFAULT", "3"),
			Hybrid:         env("EASY_APPLY_HYBRID_ANSWER", "Yes"),
			Certifications: envList("EASY_APPLY_CERTIFICATIONS"),
		},
		Policy: Policy{
			WorkAuthorization:    env("WORK_AUTHORIZATION_ANSWER", "No"),
			NeedSponsorship:      env("WORK_NEED_SPONSORSHIP_ANSWER", "Yes"),
			AuthorizationCountry: env("WORK_AUTHORIZATION_COUNTRY", "Canada"),
			LegalStatus:          env("LEGAL_STATUS_ANSWER", "No status"),
			Pronouns:             env("PRONOUNS_ANSWER", "Prefer not to say"),
			GenderDefault:        env("GENDER_DEFAULT", "Male"),
			BackgroundCheck:      env("BACKGROUND_CHECK_ANSWER", "Yes"),
			Affirmative:          env("AFFIRMATIVE_ANSWER", "Yes"),
			ReferralSource:       env("REFERRAL_SOURCE", "linkedin"),
			TextFallback:         env("TEXT_FALLBACK", "none"),
			SalaryRole:           env("SALARY_ROLE", "mid-level software engineer"),
			SalaryDefault:        env("SALARY_DEFAULT", "95000"),
			RatingStrong:         env("RATING_STRONG", "8.0"),
			RatingDefault:        env("RATING_DEFAULT", "5.0"),
		},
		Pacing: Pacing{
			MinDelaySec: envFloat("MIN_DELAY_SEC", 5),
			MaxDelaySec: envFloat("MAX_DELAY_SEC", 15),
		},
		Server: Server{
			Host: env("APP_HOST", "127.0.0.1"),
			Port: env("APP_PORT", "8000"),
		},
		Paths: Paths{
			ResumePath:      os.Getenv("RESUME_PATH"),
			CVPath:          os.Getenv("CV_PATH"),
			OverridesFile:   env("CONFIG_OVERRIDES_FILE", "data/config_overrides.json"),
			UploadDir:       env("UPLOAD_DIR", "data/uploads"),
			NoticeDir:       env("NOTICE_DIR", os.TempDir()),
			FormAnswersFile: os.Getenv("FORM_ANSWERS_FILE"),
		},
	}

	if cfg.Pacing.MaxDelaySec < cfg.Pacing.MinDelaySec {
		cfg.Pacing.MaxDelaySec = cfg.Pacing.MinDelaySec
	}

	return cfg, nil
}

// SearchURL возвращает URL поиска вакансий с фильтром простой подачи.
func (c *Cfg) SearchURL() string {
	if c.Search.URL != "" {
		return c.Search.URL
	}
	q := url.Values{}
	q.Set("keywords", c.Search.Keywords)
	q.Set("location", c.Search.Country)
	q.Set("f_AL", "true")
	return "https://www.linkedin.com/jobs/search/?" + q.Encode()
}

// CVFile returns the document used for CV-grounded answers, falling back to the resume.
func (c *Cfg) CVFile() string {
	if c.Paths.CVPath != "" {
		return c.Paths.CVPath
	}
	return c.Paths.ResumePath
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func envFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}

func envBoolDefault(key string, defaultValue bool) bool {
	if os.Getenv(key) == "" {
		return defaultValue
	}
	return envBool(key)
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
