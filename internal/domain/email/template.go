package email

import (
	"fmt"
	"strings"
)

// Placeholder is replaced with the generated (or fallback) sentence.
const Placeholder = "{assistant}"

var replyTemplates = map[Category]string{
	CategoryProductive:   "Olá!\n\n" + Placeholder + "\n\nFico à disposição para qualquer dúvida.",
	CategoryUnproductive: "Olá!\n\n" + Placeholder + "\n\nTenha um ótimo dia!",
}

// RenderReply wraps sentence in the reply template of category.
func RenderReply(category Category, sentence string) (string, error) {
	tmpl, ok := replyTemplates[category]
	if !ok {
		return "", fmt.Errorf("no reply template for category %q", category)
	}
	return strings.Replace(tmpl, Placeholder, sentence, 1), nil
}
