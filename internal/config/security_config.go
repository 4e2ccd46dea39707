package config

import "net/http"

type SecurityLevel int

const (
	SecurityPublic   SecurityLevel = iota // No authentication
	SecurityCustomer                      // Any signed-in account
	SecurityAdmin                         // ADMIN role only
)

// EndpointSecurityConfig maps "METHOD route-template" to the level it requires.
var EndpointSecurityConfig = map[string]SecurityLevel{
	http.MethodGet + " /health":                SecurityPublic,
	http.MethodGet + " /metrics":               SecurityPublic,
	http.MethodPost + " /api/v1/auth/register": SecurityPublic,
	http.MethodPost + " /api/v1/auth/login":    SecurityPublic,

	http.MethodGet + " /api/v1/vehicles":              SecurityCustomer,
	http.MethodGet + " /api/v1/vehicles/{id}":         SecurityCustomer,
	http.MethodPost + " /api/v1/vehicles/{id}/rent":   SecurityCustomer,
	http.MethodPost + " /api/v1/vehicles/{id}/return": SecurityCustomer,
	http.MethodPost + " /api/v1/vehicles/{id}/cancel": SecurityCustomer,
	http.MethodGet + " /api/v1/me/vehicles":           SecurityCustomer,
	http.MethodGet + " /api/v1/me/upcoming":           SecurityCustomer,
	http.MethodGet + " /api/v1/me/history":            SecurityCustomer,
	http.MethodGet + " /api/v1/me/notifications":      SecurityCustomer,
	http.MethodGet + " /api/v1/me":                    SecurityCustomer,
	http.MethodPut + " /api/v1/me":                    SecurityCustomer,

	http.MethodPost + " /api/v1/vehicles":                    SecurityAdmin,
	http.MethodPut + " /api/v1/vehicles/{id}":                SecurityAdmin,
	http.MethodDelete + " /api/v1/vehicles/{id}":             SecurityAdmin,
	http.MethodPost + " /api/v1/vehicles/{id}/payment":       SecurityAdmin,
	http.MethodGet + " /api/v1/admin/history":                SecurityAdmin,
	http.MethodGet + " /api/v1/admin/notifications":          SecurityAdmin,
	http.MethodGet + " /api/v1/admin/accounts":               SecurityAdmin,
	http.MethodPost + " /api/v1/admin/accounts":              SecurityAdmin,
	http.MethodPut + " /api/v1/admin/accounts/{username}":    SecurityAdmin,
	http.MethodDelete + " /api/v1/admin/accounts/{username}": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a route
func GetSecurityLevel(method, routeTemplate string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method+" "+routeTemplate]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
