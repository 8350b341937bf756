// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityRefresh                      // Refresh token required
	SecurityAccess                       // Access token required
)

// EndpointSecurityConfig maps "METHOD /route/template" to the required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health and auth - Public
	"GET /health":         SecurityPublic,
	"POST /auth/register": SecurityPublic,
	"POST /auth/login":    SecurityPublic,

	// Auth - Refresh Protected
	"POST /auth/refresh": SecurityRefresh,

	// Transfers - Access Protected
	"POST /transferts/compte-vers-compte":   SecurityAccess,
	"POST /transferts/compte-vers-objectif": SecurityAccess,
	"POST /transferts/objectif-vers-compte": SecurityAccess,
	"GET /transferts/historique":            SecurityAccess,
	"POST /contributions":                   SecurityAccess,
	"POST /dettes/{id}/remboursements":      SecurityAccess,
	"GET /dettes/{id}/remboursements":       SecurityAccess,

	// Sharing - Access Protected
	"POST /comptes-partages":                                SecurityAccess,
	"GET /comptes-partages/{id_compte}":                     SecurityAccess,
	"DELETE /comptes-partages/{id_compte}/{id_utilisateur}": SecurityAccess,

	// Accounts, objectives, debts - Access Protected
	"GET /comptes":                      SecurityAccess,
	"POST /comptes":                     SecurityAccess,
	"GET /comptes/{id}":                 SecurityAccess,
	"PUT /comptes/{id}":                 SecurityAccess,
	"DELETE /comptes/{id}":              SecurityAccess,
	"GET /comptes/{id}/operations":      SecurityAccess,
	"GET /objectifs":                    SecurityAccess,
	"POST /objectifs":                   SecurityAccess,
	"GET /objectifs/{id}":               SecurityAccess,
	"PUT /objectifs/{id}":               SecurityAccess,
	"DELETE /objectifs/{id}":            SecurityAccess,
	"GET /objectifs/{id}/contributions": SecurityAccess,
	"GET /dettes":                       SecurityAccess,
	"POST /dettes":                      SecurityAccess,
	"GET /dettes/{id}":                  SecurityAccess,
	"PUT /dettes/{id}":                  SecurityAccess,
	"DELETE /dettes/{id}":               SecurityAccess,

	// Postings, budgets, subscriptions - Access Protected
	"POST /depenses":           SecurityAccess,
	"POST /revenus":            SecurityAccess,
	"GET /budgets":             SecurityAccess,
	"POST /budgets":            SecurityAccess,
	"DELETE /budgets/{id}":     SecurityAccess,
	"GET /abonnements":         SecurityAccess,
	"POST /abonnements":        SecurityAccess,
	"DELETE /abonnements/{id}": SecurityAccess,

	// Reporting and notifications - Access Protected
	"GET /dashboard":              SecurityAccess,
	"GET /notifications":          SecurityAccess,
	"POST /notifications/{id}/lu": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
