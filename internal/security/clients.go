package security

// In-memory client registry (replace with DB/config later)
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"orders.read","orders.remedy"}
	Enabled bool
}

var Clients = map[string]Client{
	"backoffice-ui":  {ID: "backoffice-ui", Secret: "backoffice-ui-secret", Perms: []string{"orders.read", "orders.write", "orders.remedy", "inventory.read"}, Enabled: true},
	"svc-storefront": {ID: "svc-storefront", Secret: "storefront-secret", Perms: []string{"orders.read"}, Enabled: true},
	"svc-reporting":  {ID: "svc-reporting", Secret: "reporting-secret", Perms: []string{"orders.read", "inventory.read"}, Enabled: true},
}
