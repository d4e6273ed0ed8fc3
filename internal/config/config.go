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
var UserAgent = "Go-Contacts/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Contacts"
	AppCommand        = "go-contacts"
	AppID             = "com.github.tartampluch.go-contacts"
	KeyringService    = "com.github.tartampluch.go-contacts"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	ConfigFileName    = "config.toml"
	IndexDirName      = "index"
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
	// Used for logs, the settings file and written cards.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagDebug      = "debug"
	FlagConfig     = "config"
	FlagLogFormat  = "log-format"
	FlagMonth      = "month"
	FlagUID        = "uid"
	FlagUser       = "user"
	FlagOutput     = "output"
	FlagDir        = "dir"
	FlagNoValidate = "no-validate"
	FlagForce      = "force"
	FlagPort       = "port"

	FlagDescDebug      = "Enable debug logging"
	FlagDescConfig     = "Settings file (default is <user config dir>/go-contacts/config.toml)"
	FlagDescLogFormat  = "Log output format: text or json"
	FlagDescMonth      = "Only list contacts whose birthday falls in this month (1-12)"
	FlagDescUID        = "Add a UID property holding a random urn:uuid"
	FlagDescUser       = "Username for the remote address book"
	FlagDescOutput     = "Write the result to this file instead of stdout"
	FlagDescDir        = "Directory holding the card files"
	FlagDescNoValidate = "Skip the semantic validation pass"
	FlagDescForce      = "Overwrite an existing file"
	FlagDescPort       = "Port to listen on (overrides server_port)"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// CLI Commands
// -----------------------------------------------------------------------------

// Each CmdUse* is the cobra usage line and each CmdShort* its one-line help.
const (
	CmdUseParse             = "parse <file|->"
	CmdUseValidate          = "validate <file|->..."
	CmdUseFormat            = "format <file|->"
	CmdUseNew               = "new <file> <name>"
	CmdUseRename            = "rename <file> <name>"
	CmdUseConfig            = "config"
	CmdUseConfigInit        = "init"
	CmdUseConfigShow        = "show"
	CmdUseIndex             = "index"
	CmdUseList              = "list"
	CmdUseFetch             = "fetch [url]"
	CmdUseCredentials       = "credentials"
	CmdUseCredentialsSet    = "set [user]"
	CmdUseCredentialsDelete = "delete [user]"
	CmdUseVersion           = "version"
	CmdUseServe             = "serve"

	CmdShortRoot              = "Read, validate and publish vCard 4.0 contact cards"
	CmdShortParse             = "Parse a card and print its structure"
	CmdShortValidate          = "Parse and validate one or more cards"
	CmdShortFormat            = "Rewrite a card in canonical order"
	CmdShortNew               = "Create a minimal card holding only a formatted name"
	CmdShortRename            = "Replace the formatted name of a card in place"
	CmdShortConfig            = "Manage the settings file"
	CmdShortConfigInit        = "Write the default settings file"
	CmdShortConfigShow        = "Print the effective settings as TOML"
	CmdShortIndex             = "Rebuild the contact index from the cards directory"
	CmdShortList              = "List valid cards, optionally only those with a birthday in a given month"
	CmdShortFetch             = "Download a remote address book into the cards directory"
	CmdShortCredentials       = "Manage remote address book passwords in the system keyring"
	CmdShortCredentialsSet    = "Store a password read from standard input"
	CmdShortCredentialsDelete = "Remove a stored password"
	CmdShortVersion           = "Print version information"
	CmdShortServe             = "Publish the birthday calendar and the contact listing over HTTP"
)

// Log output formats accepted by --log-format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// -----------------------------------------------------------------------------
// Settings Keys (viper / TOML)
// -----------------------------------------------------------------------------

const (
	EnvPrefix = "GOCONTACTS"

	KeyCardsDir        = "cards_dir"
	KeyIndexDir        = "index_dir"
	KeyServerPort      = "server_port"
	KeyLanguage        = "language"
	KeyRemoteURL       = "remote_url"
	KeyRemoteUser      = "remote_user"
	KeyReminderTrigger = "reminder_trigger"
	KeyRefreshMinutes  = "refresh_minutes"
	KeyLogFormat       = "log_format"
)

// SupportedLanguages defines the list of available languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyKindOK              = "kind_ok"
	TKeyKindInvalidFile     = "kind_invalid_file"
	TKeyKindInvalidCard     = "kind_invalid_card"
	TKeyKindInvalidProperty = "kind_invalid_property"
	TKeyKindInvalidDateTime = "kind_invalid_datetime"
	TKeyKindWriteError      = "kind_write_error"
	TKeyKindOtherError      = "kind_other_error"

	TKeyReportValid    = "report_valid"     // Requires File
	TKeyReportInvalid  = "report_invalid"   // Requires File, Reason
	TKeyReportWritten  = "report_written"   // Requires File
	TKeyReportIndexed  = "report_indexed"   // Requires Count
	TKeyReportSkipped  = "report_skipped"   // Requires Count
	TKeyReportFetched  = "report_fetched"   // Requires Count
	TKeyReportCredsSet = "report_creds_set" // Requires User

	TKeyColName        = "col_name"
	TKeyColBirthday    = "col_birthday"
	TKeyColAnniversary = "col_anniversary"
	TKeyColProps       = "col_props"
	TKeyColFile        = "col_file"
	TKeyColModified    = "col_modified"
	TKeyNone           = "value_none"

	TKeyEvtBirthday       = "event_birthday"        // Requires Name
	TKeyEvtBirthdayAge    = "event_birthday_age"    // Requires Name, Age
	TKeyEvtAnniversary    = "event_anniversary"     // Requires Name
	TKeyEvtAnniversaryAge = "event_anniversary_age" // Requires Name, Age
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort           = "18080"
	DefaultCardsDir       = "cards"
	DefaultRefreshMin     = 60
	DefaultLanguage       = "en"
	DefaultLeapYear       = 2000 // Leap year fallback for dates like --02-29
	DefaultFormattedName  = "Default Name"
	DefaultLogFormat      = LogFormatText
	DefaultReminder       = ""
	UIDSalt               = "go-contacts-v1-" // Salt for deterministic UID generation
	DebounceWindow        = 500 * time.Millisecond
	MinMonth              = 1
	MaxMonth              = 12
	NoMonthFilter         = 0
	EventKindBirthday     = "birthday"
	EventKindAnniversary  = "anniversary"
	DisplayNone           = "None"
	DisplayDateTimeText   = "Text: %s"
	DisplayDateTimeStruct = "Date: %s, Time: %s, UTC: %s"
	DisplayYes            = "Yes"
	DisplayNo             = "No"
)

// -----------------------------------------------------------------------------
// Standards: vCard 4.0
// -----------------------------------------------------------------------------

const (
	MarkerBegin      = "BEGIN:VCARD"
	MarkerEnd        = "END:VCARD"
	VersionPrefix    = "VERSION:"
	SupportedVersion = "4.0"
	LineEnding       = "\r\n"

	VCardFN          = "FN"
	VCardN           = "N"
	VCardBDAY        = "BDAY"
	VCardAnniversary = "ANNIVERSARY"
	VCardVersion     = "VERSION"
	VCardUID         = "UID"

	ParamValue     = "VALUE"
	ParamValueText = "text"

	// NComponents is the number of structured fields of the N property
	// (family; given; additional; prefixes; suffixes).
	NComponents = 5

	URNUUIDPrefix = "urn:uuid:"
)

// AllowedPropertyNames lists the property names accepted by the validator,
// compared case-insensitively.
var AllowedPropertyNames = []string{
	"BEGIN", "END", "SOURCE", "KIND", "XML", "FN", "ORG", "N", "NICKNAME",
	"PHOTO", "BDAY", "ANNIVERSARY", "GENDER", "ADR", "TEL", "EMAIL", "IMPP",
	"LANG", "TZ", "GEO", "TITLE", "ROLE", "LOGO", "MEMBER", "RELATED",
	"CATEGORIES", "NOTE", "PRODID", "REV", "SOUND", "UID", "CLIENTPIDMAP",
	"URL", "VERSION", "KEY", "FBURL", "CALURI", "CALADRURI",
}

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Contacts//Engine//EN"
	ICalCalName   = "Contacts"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gocontacts"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for interpreting structured BDAY/ANNIVERSARY dates.
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

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
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteContacts       = "/contacts"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
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
	HeaderAccept          = "Accept"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"

	// AcceptAddressBook is sent on every download; the listed media types are
	// also the only ones a response may declare.
	AcceptAddressBook = "text/vcard, text/x-vcard, text/directory;q=0.9, text/plain;q=0.5"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// AddressBookMediaTypes are the Content-Type values a download may carry.
// application/octet-stream covers servers that do not label static files.
var AddressBookMediaTypes = []string{
	"text/vcard", "text/x-vcard", "text/directory", "text/plain", "application/octet-stream",
}

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrBareLineFeed     = "line feed not preceded by carriage return"
	ErrMissingBegin     = "card does not start with BEGIN:VCARD"
	ErrDuplicateBegin   = "duplicate BEGIN:VCARD"
	ErrMissingEnd       = "card is not terminated by END:VCARD"
	ErrBadVersion       = "first property must be VERSION:4.0"
	ErrMissingVersion   = "VERSION property is missing"
	ErrMissingFN        = "FN property is missing"
	ErrMissingColon     = "property line has no ':'"
	ErrEmptyName        = "property name is empty"
	ErrBadParameter     = "parameter must be name=value with both parts non-empty"
	ErrDuplicateFN      = "duplicate FN property"
	ErrDuplicateBDAY    = "duplicate BDAY property"
	ErrDuplicateAnniv   = "duplicate ANNIVERSARY property"
	ErrNilCard          = "card is nil"
	ErrNilProperty      = "property is nil"
	ErrNoFN             = "card has no FN property"
	ErrNoOptional       = "card has no optional property collection"
	ErrNameNotAllowed   = "property name is not allowed"
	ErrNoValues         = "property has no values"
	ErrVersionAsProp    = "VERSION must not appear as an optional property"
	ErrNCardinality     = "N must appear at most once"
	ErrNComponents      = "N must have exactly 5 values"
	ErrDateAsProp       = "BDAY and ANNIVERSARY must not appear as optional properties"
	ErrDuplicateName    = "property name appears more than once"
	ErrEmptyDate        = "structured date has an empty date part"
	ErrUnknownDateTime  = "unknown date-time variant"
	ErrFileName         = "file name must end in .vcf or .vcard"
	ErrFileRead         = "failed to read card file"
	ErrFileWrite        = "failed to write card"
	ErrFileExists       = "file already exists"
	ErrLocalPathEmpty   = "configuration error: cards directory is empty"
	ErrWebURLEmpty      = "configuration error: remote URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrMonthRange       = "month must be between 1 and 12"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrStreamSplit      = "failed to split address book stream"
	ErrRequestCreate    = "failed to create request"
	ErrNetwork          = "network error during fetch"
	ErrHTTPStatus       = "server returned unexpected status"
	ErrContentType      = "server did not return an address book"
	ErrBodyTooLarge     = "address book exceeds size limit"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrJSONEncode       = "failed to encode contact listing"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrConfigDir        = "could not determine user config dir"
	ErrCreateDir        = "could not create directory"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrConfigRead       = "failed to read settings"
	ErrConfigDecode     = "failed to decode settings"
	ErrConfigWrite      = "failed to write settings"
	ErrIndexOpen        = "failed to open contact index"
	ErrIndexWrite       = "failed to write contact index"
	ErrIndexRead        = "failed to read contact index"
	ErrIndexNotFound    = "contact index has no entry for file"
	ErrLibraryScan      = "failed to scan cards directory"
	ErrWatcher          = "failed to watch cards directory"
	ErrWatcherRunning   = "watcher is already running"
	ErrWatcherClosed    = "watcher event channel closed unexpectedly"
	ErrWatchCallback    = "resync after directory change failed"
	ErrKeyringGet       = "failed to read password from keyring"
	ErrKeyringSet       = "failed to store password in keyring"
	ErrKeyringDelete    = "failed to delete password from keyring"
	ErrKeyringUser      = "keyring user name is empty"
	ErrInvalidLogFormat = "log format must be text or json"
	ErrCardsInvalid     = "invalid cards"
	ErrPasswordEmpty    = "no password given on standard input"
	ErrStdinRepeated    = "standard input (-) can be given only once"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummaryBirthday    = "Birthday: %s"
	FallbackSummaryBirthdayAge = "Birthday: %s (%d)"
	FallbackSummaryAnniversary = "Anniversary: %s"
	FallbackSummaryAnnivYears  = "Anniversary: %s (%d)"
	FallbackName               = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgCardAssembled = "Card assembled"
	MsgPropertyRead  = "Property read"
	MsgSyncStarted   = "Synchronization started"
	MsgSyncFinished  = "Synchronization finished"
	MsgSyncFailed    = "Synchronization failed"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgAppStop       = "Application stopped gracefully"
	MsgSkippedCard   = "Skipping card that failed to load"
	MsgSkippedFile   = "Skipping non-card file"
	MsgSkippedDate   = "Skipping date that is not a calendar date"
	MsgGenSuccess    = "Calendar generation successful"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgPassStored    = "Password stored in keyring"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgIndexUpdated  = "Contact index updated"
	MsgIndexPruned   = "Removed stale index entry"
	MsgWatchEvent    = "Cards directory changed"
	MsgCardWritten   = "Card written"
	MsgStreamSplit   = "Address book split into cards"
	MsgFetchStart    = "Initiating address book download"
	MsgFetchStatus   = "Server returned error status"
	MsgFetchBody     = "Address book downloading"
	MsgFetchDone     = "Address book downloaded"
	MsgCardImported  = "Card imported"
	MsgSettingsUsed  = "Settings loaded"
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
	LogKeyDir       = "dir"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyLine      = "line"
	LogKeyProperty  = "property"
	LogKeyOptional  = "optional_properties"
	LogKeyKind      = "kind"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyLoaded    = "loaded"
	LogKeySkipped   = "skipped"
	LogKeyEvents    = "events"
	LogKeyToday     = "today"
	LogKeyLength    = "content_length"
	LogKeyMime      = "content_type"
	LogKeySize      = "size"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyOp        = "op"
	LogKeyDuration  = "duration_ms"
	LogKeyInterval  = "interval"
	LogKeySource    = "settings_file"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "build_date"
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
	CompParser    = "parser"
	CompWriter    = "writer"
	CompLibrary   = "library"
	CompIndex     = "index"
	CompEngine    = "engine"
	CompServer    = "server"
	CompFetcher   = "fetcher"
	CompWorker    = "worker"
	CompWatcher   = "watcher"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompSettings  = "settings"
	CompKeyring   = "keyring"
)
