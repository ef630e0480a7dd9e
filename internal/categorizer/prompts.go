package categorizer

// SystemPrompt instructs the model to answer with a single JSON object.
const SystemPrompt = "You are a smart expense tracking assistant. Based on the user's input, " +
	"return the most appropriate category and subcategory. " +
	"The category must be one of: food, travel, friends, others. " +
	`Output only a JSON object like: {"category": "food", "subcategory": "Groceries"}`

// DefaultTemperature is used when no temperature is configured.
const DefaultTemperature float32 = 0.3
