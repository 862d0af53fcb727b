package mode

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ParseStyle parses a space separated style description such as
// "fg:yellow bg:#202020 bold". A bare color sets the foreground.
// Attributes: bold, dim, italic, reverse, underline.
func ParseStyle(s string) (tcell.Style, error) {
	style := tcell.StyleDefault
	for _, field := range strings.Fields(s) {
		key, value, hasKey := strings.Cut(field, ":")
		if !hasKey {
			value = key
		}
		switch {
		case hasKey && key == "fg":
			c, err := parseColor(value)
			if err != nil {
				return style, err
			}
			style = style.Foreground(c)
		case hasKey && key == "bg":
			c, err := parseColor(value)
			if err != nil {
				return style, err
			}
			style = style.Background(c)
		case hasKey:
			return style, fmt.Errorf("%w: unknown style key %q", ErrInvalidStyle, key)
		case value == "bold":
			style = style.Bold(true)
		case value == "dim":
			style = style.Dim(true)
		case value == "italic":
			style = style.Italic(true)
		case value == "reverse":
			style = style.Reverse(true)
		case value == "underline":
			style = style.Underline(true)
		default:
			c, err := parseColor(value)
			if err != nil {
				return style, err
			}
			style = style.Foreground(c)
		}
	}
	return style, nil
}

func parseColor(name string) (tcell.Color, error) {
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault, nil
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return c, fmt.Errorf("%w: unknown color %q", ErrInvalidStyle, name)
	}
	return c, nil
}
