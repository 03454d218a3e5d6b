package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Famcal/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "famcal"
	AppID          = "com.github.tartampluch.famcal"
	KeyringService = "com.github.tartampluch.famcal"
	LogFileName    = "app.log"
	ConfigFileName = "config.yaml"
	CacheDirName   = "cache"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs, config and cached payloads.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands & Flags
// -----------------------------------------------------------------------------

const (
	CmdMonth    = "month"
	CmdServe    = "serve"
	CmdVersion  = "version"
	CmdPassword = "password"

	FlagConfig = "config"
	FlagDebug  = "debug"
	FlagYear   = "year"
	FlagMonth  = "month"
	FlagSelect = "select"
	FlagLang   = "lang"
	FlagListen = "listen"

	FlagDescConfig = "Path to the YAML configuration file"
	FlagDescDebug  = "Enable debug logging to stdout"
	FlagDescYear   = "Year to display (defaults to the current year)"
	FlagDescMonth  = "Month to display, 1-12 (defaults to the current month)"
	FlagDescSelect = "Selected date in YYYY-MM-DD form"
	FlagDescLang   = "Language used for weekday labels"
	FlagDescListen = "HTTP listen address (overrides the config file)"

	ShortRoot    = "Family calendar month engine"
	ShortMonth   = "Print the month grid with its annotations"
	ShortServe   = "Serve month views over HTTP and refresh sources periodically"
	ShortVersion = "Show application version and exit"
	ShortPass    = "Store the password of a source user in the OS keyring"

	UsePassword    = "password <user>"
	PromptPassword = "Password for %s: "
	MsgPassStored  = "Password stored for %s\n"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Calendar Grid & Display Policy
// -----------------------------------------------------------------------------

const (
	// GridCells is the fixed size of a month grid: six weeks of seven days.
	GridCells   = 42
	DaysPerWeek = 7

	// Per-category display caps applied by the annotation resolver.
	// Holidays and events share one list.
	CapEntries   = 2
	CapSongs     = 3
	CapBirthdays = 2

	// MinYear / MaxYear bound the years accepted by the grid builder.
	MinYear = 1
	MaxYear = 9999

	DefaultLeapYear = 2000 // Leap year fallback for dates like --02-29
)

// -----------------------------------------------------------------------------
// Date Keys & Formats
// -----------------------------------------------------------------------------

const (
	FormatExactKey    = "%04d-%02d-%02d"
	FormatMonthDayKey = "%02d-%02d"
	FormatYearMonth   = "%04d-%02d"

	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"
	DateFormatMonthDay  = "01-02"
)

// -----------------------------------------------------------------------------
// Sources
// -----------------------------------------------------------------------------

const (
	SourceModeWeb   = "web"
	SourceModeLocal = "local"

	SourceKindSnapshot = "snapshot"
	SourceKindVCard    = "vcard"
	SourceKindICS      = "ics"

	// MemberIDNamespace seeds deterministic member IDs for vCards without UID.
	MemberIDNamespace = "famcal-member-v1"
	FormatHashInput   = "%s|%s|%s"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardUID  = "UID"
)

// -----------------------------------------------------------------------------
// Defaults
// -----------------------------------------------------------------------------

const (
	DefaultListen      = "127.0.0.1:18080"
	DefaultLanguage    = "en"
	DefaultRefreshCron = "*/15 * * * *"
)

// SupportedLanguages defines the languages shipped for weekday labels (ISO 639-1).
var SupportedLanguages = []string{"en", "fr", "ko"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeySunday    = "weekday_sunday"
	TKeyMonday    = "weekday_monday"
	TKeyTuesday   = "weekday_tuesday"
	TKeyWednesday = "weekday_wednesday"
	TKeyThursday  = "weekday_thursday"
	TKeyFriday    = "weekday_friday"
	TKeySaturday  = "weekday_saturday"
)

// WeekdayKeys lists the translation keys in grid column order (Sunday first).
var WeekdayKeys = [DaysPerWeek]string{
	TKeySunday, TKeyMonday, TKeyTuesday, TKeyWednesday, TKeyThursday, TKeyFriday, TKeySaturday,
}

// FallbackWeekdays is used when a translation is missing.
var FallbackWeekdays = [DaysPerWeek]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteMonth          = "/api/month"
	RouteHealth         = "/health"
	CacheSizeMax        = 4 * 1024 * 1024 // in-memory diskv cache
)

// -----------------------------------------------------------------------------
// HTTP Headers, Query Params & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	QueryYear     = "year"
	QueryMonth    = "month"
	QuerySelected = "selected"
	QueryLang     = "lang"

	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidDate      = "invalid calendar date"
	ErrInvalidMonth     = "month out of range"
	ErrInvalidYear      = "year out of range"
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrKindUnsupport    = "configuration error: unsupported source kind"
	ErrConfigPathEmpty  = "config path is empty"
	ErrConfigNil        = "config is nil"
	ErrConfigLoad       = "failed to load configuration"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrListenRequired   = "listen address is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrNotModifiedEmpty = "received 304 Not Modified but no cached body available"
	ErrSnapshotDecode   = "failed to decode snapshot document"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalParse        = "failed to parse iCalendar stream"
	ErrDateParse        = "unable to parse date"
	ErrAllSourcesFailed = "every configured source failed to load"
	ErrNoSources        = "no sources configured"
	ErrCronSpec         = "invalid refresh schedule"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrEncodeResp       = "failed to encode response"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrCacheWrite       = "failed to write fetch cache"
	ErrResponseTooLarge = "response body exceeds the size limit"
	ErrPasswordEmpty    = "password is empty"
	ErrPasswordStore    = "failed to store password"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgBadRequest   = "Bad Request"
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPMsgHealthy      = "ok"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	// Labels shown for records whose display field is missing.
	FallbackName        = "Unknown"
	FallbackEventTitle  = "Untitled event"
	FallbackHolidayName = "Holiday"
	FallbackSongTitle   = "Untitled song"

	MsgLoadStarted      = "Snapshot load started"
	MsgLoadFinished     = "Snapshot load finished"
	MsgSourceFailed     = "Source failed to load"
	MsgSourceLoaded     = "Source loaded"
	MsgSkippedRecord    = "Skipping malformed record"
	MsgSkippedCard      = "Skipping malformed vCard"
	MsgSkippedDate      = "Skipping invalid date format"
	MsgHolidayConflict  = "Holiday already declared for date, keeping first"
	MsgFetchStart       = "Fetch started"
	MsgFetchSuccess     = "Fetch succeeded"
	MsgFetchNotModified = "Fetch not modified, using cache"
	MsgFetchFallback    = "Fetch failed, using cached body"
	MsgWorkerStart      = "Refresh worker started"
	MsgWorkerStop       = "Worker stopping due to context cancellation"
	MsgRefreshFailed    = "Snapshot refresh failed"
	MsgSnapshotUpdated  = "Snapshot published"
	MsgCacheUpdated     = "Served snapshot replaced"
	MsgAppStarting      = "Starting application"
	MsgConfigLoaded     = "Configuration loaded"
	MsgAppStop          = "Application stopped gracefully"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Skipping malformed locale filename"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgPassFail         = "Password retrieval failed (might be empty)"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyListen    = "listen"
	LogKeyMode      = "mode"
	LogKeyKind      = "kind"
	LogKeySource    = "source"
	LogKeySchedule  = "schedule"
	LogKeyUser      = "user"
	LogKeyValue     = "value"
	LogKeyDate      = "date"
	LogKeyKept      = "kept"
	LogKeyDropped   = "dropped"
	LogKeyStats     = "stats"
	LogKeyEvents    = "events"
	LogKeyHolidays  = "holidays"
	LogKeySongs     = "songs"
	LogKeyBirthdays = "birthdays"
	LogKeyFailed    = "failed"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyFromCache = "from_cache"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyBuilt   = "built"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine  = "engine"
	CompIndexer = "indexer"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
	CompConfig  = "config"
)
