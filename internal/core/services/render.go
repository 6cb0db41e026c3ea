package services

import "strings"

// renderPrompt substitutes named slots of the form {name} in a prompt
// template. Slots with no entry in vars are left as-is so missing
// values surface visibly in model transcripts instead of vanishing.
func renderPrompt(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
