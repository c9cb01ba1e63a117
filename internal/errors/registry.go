package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Store Errors (V001-V019)
	// ============================================

	"V001": {
		Category: CategoryStore,
		Message:  "Duplicate store name",
		Detail:   "A store with this name is already registered. Names are unique within a registry.",
		DocURL:   "https://vuey.dev/docs/errors/V001",
	},
	"V002": {
		Category: CategoryStore,
		Message:  "Store not registered",
		Detail:   "Getters and actions only work after the store has been registered with a registry.",
		DocURL:   "https://vuey.dev/docs/errors/V002",
	},
	"V003": {
		Category: CategoryStore,
		Message:  "Store already registered",
		Detail:   "A store can be registered once. Declare a second store to use the same state in another registry.",
		DocURL:   "https://vuey.dev/docs/errors/V003",
	},
	"V004": {
		Category: CategoryStore,
		Message:  "Action not found",
		Detail:   "The store does not define this action.",
		DocURL:   "https://vuey.dev/docs/errors/V004",
	},
	"V005": {
		Category: CategoryStore,
		Message:  "Getter not found",
		Detail:   "The store does not define this getter.",
		DocURL:   "https://vuey.dev/docs/errors/V005",
	},
	"V006": {
		Category: CategoryStore,
		Message:  "Invalid argument",
		Detail:   "An action received a missing argument or one of the wrong type.",
		DocURL:   "https://vuey.dev/docs/errors/V006",
	},
	"V007": {
		Category: CategoryStore,
		Message:  "Unknown property",
		Detail:   "The key does not name an exported field or a map entry of the store's state.",
		DocURL:   "https://vuey.dev/docs/errors/V007",
	},
	"V008": {
		Category: CategoryStore,
		Message:  "Record not found",
		Detail:   "No persisted record exists for this store name.",
		DocURL:   "https://vuey.dev/docs/errors/V008",
	},
	"V009": {
		Category: CategoryStore,
		Message:  "Invalid record value",
		Detail:   "Record values must be valid JSON.",
		DocURL:   "https://vuey.dev/docs/errors/V009",
	},

	// ============================================
	// Persistence Errors (V020-V039)
	// ============================================

	"V020": {
		Category: CategoryPersist,
		Message:  "Backend unavailable",
		Detail:   "The persistence backend could not be opened or reached.",
		DocURL:   "https://vuey.dev/docs/errors/V020",
	},
	"V021": {
		Category: CategoryPersist,
		Message:  "Backend closed",
		Detail:   "The persistence backend was used after it was closed.",
		DocURL:   "https://vuey.dev/docs/errors/V021",
	},
	"V022": {
		Category: CategoryPersist,
		Message:  "Backend cannot list records",
		Detail:   "This backend does not support listing keys or deleting records.",
		DocURL:   "https://vuey.dev/docs/errors/V022",
	},

	// ============================================
	// Configuration Errors (V040-V059)
	// ============================================

	"V040": {
		Category: CategoryConfig,
		Message:  "Invalid vuey.json",
		Detail:   "The configuration file contains invalid JSON or unknown values.",
		DocURL:   "https://vuey.dev/docs/errors/V040",
	},
	"V041": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No vuey.json was found in the current directory or any parent directory.",
		DocURL:   "https://vuey.dev/docs/errors/V041",
	},
	"V042": {
		Category: CategoryConfig,
		Message:  "Invalid backend configuration",
		Detail:   "A backend section is missing a required field for its kind.",
		DocURL:   "https://vuey.dev/docs/errors/V042",
	},

	// ============================================
	// CLI Errors (V060-V079)
	// ============================================

	"V060": {
		Category: CategoryCLI,
		Message:  "Invalid command arguments",
		Detail:   "The command received the wrong number or kind of arguments.",
		DocURL:   "https://vuey.dev/docs/errors/V060",
	},
	"V061": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The inspector server stopped with an error.",
		DocURL:   "https://vuey.dev/docs/errors/V061",
	},
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
