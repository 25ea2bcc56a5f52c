package domain

type Role string

const (
	RoleManager     Role = "Manager"
	RoleStockClerk  Role = "StockClerk"
	RoleSalesPerson Role = "SalesPerson"
)

func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleStockClerk, RoleSalesPerson:
		return true
	}
	return false
}

type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Name     string `db:"name"`
	Hash     string `db:"password_hash"`
	Role     Role   `db:"role"`
}

// Session is created at login. Role and shop are captured then, so the gate
// never has to look up memberships per request.
type Session struct {
	Token    string `db:"token"`
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
	Role     Role   `db:"role"`
	ShopID   int64  `db:"shop_id"`
	ShopName string `db:"shop_name"`
}

// Actor identifies who performs an operation and from where.
type Actor struct {
	UserID   int64
	ShopID   int64
	ShopName string
	IP       string
}

func (s *Session) Actor(ip string) Actor {
	return Actor{UserID: s.UserID, ShopID: s.ShopID, ShopName: s.ShopName, IP: ip}
}
