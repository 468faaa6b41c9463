package template

import "strings"

// Template is an email template: a subject line and an HTML body that
// may contain {key} placeholders.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// builtins is the catalog shipped with the service. There is no
// template store; these four cover the association's recurring mail.
var builtins = []Template{
	{
		ID:      "welcome",
		Name:    "Bienvenue",
		Subject: "Bienvenue sur RétroBus Mail",
		Body:    "<h1>Bienvenue</h1><p>Merci de vous être inscrit.</p>",
	},
	{
		ID:      "password_reset",
		Name:    "Réinitialiser le mot de passe",
		Subject: "Réinitialiser votre mot de passe",
		Body:    `<h1>Réinitialisation</h1><p>Cliquez <a href="{reset_link}">ici</a> pour réinitialiser.</p>`,
	},
	{
		ID:      "event_notification",
		Name:    "Notification d'événement",
		Subject: "Nouvel événement RétroBus",
		Body:    "<h1>Événement</h1><p>Un nouvel événement a été créé: {event_name}</p>",
	},
	{
		ID:      "maintenance_alert",
		Name:    "Alerte maintenance",
		Subject: "Alerte maintenance véhicule",
		Body:    "<h1>Maintenance</h1><p>Maintenance requise pour: {vehicle_name}</p>",
	},
}

// All returns the built-in catalog. The caller must not mutate the
// returned templates.
func All() []Template {
	return builtins
}

// ByID looks up a built-in template. The second return is false for an
// unknown id.
func ByID(id string) (Template, bool) {
	for _, t := range builtins {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// Render substitutes {key} placeholders in body with the given
// variables. Placeholders with no matching variable are left intact so
// a missing value is visible in the delivered mail instead of silently
// vanishing.
func Render(body string, variables map[string]string) string {
	for key, value := range variables {
		body = strings.ReplaceAll(body, "{"+key+"}", value)
	}
	return body
}
