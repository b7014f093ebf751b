package styles

// Preset is a named set of token colors.
type Preset struct {
	Name        string
	Description string
	Colors      map[ColorToken]string
}

// DefaultPreset holds the dark-mode defaults of the color variables.
var DefaultPreset = Preset{
	Name:        "default",
	Description: "Default dark theme",
	Colors: map[ColorToken]string{
		TokenTextPrimary:         "#CCCCCC",
		TokenTextMuted:           "#696969",
		TokenTextPlaceholder:     "#777777",
		TokenTextLiteral:         "#89B4FA",
		TokenBorderDefault:       "#696969",
		TokenBorderFocus:         "#54A0FF",
		TokenStatusSuccess:       "#73F59F",
		TokenStatusError:         "#FF8787",
		TokenSelectionBackground: "#3A4A5C",
	},
}

// Presets holds the built-in themes by name.
var Presets = map[string]Preset{
	"default": DefaultPreset,
	"high-contrast": {
		Name:        "high-contrast",
		Description: "White text, bright borders",
		Colors: map[ColorToken]string{
			TokenTextPrimary:         "#FFFFFF",
			TokenTextMuted:           "#BBBBBB",
			TokenTextPlaceholder:     "#AAAAAA",
			TokenTextLiteral:         "#FECA57",
			TokenBorderDefault:       "#BBBBBB",
			TokenBorderFocus:         "#FFFFFF",
			TokenSelectionBackground: "#1A5276",
		},
	},
}
