package auth

// Role es el rol del actor dentro de ADOPTME. El core confía en este
// input (la autenticación vive en el API central, no acá).
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleFundacionAdmin Role = "fundacionAdmin"
	RoleAdoptante      Role = "adoptante"
)

// IsValid valida que el rol sea uno de los conocidos.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleFundacionAdmin, RoleAdoptante:
		return true
	}
	return false
}

// Claims representa la identidad extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}
