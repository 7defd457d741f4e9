package domain

// Credential store keys.
const (
	KeyToken  = "token"
	KeyUserID = "userId"
)

// Credential is the locally held bearer token together with the role claim
// decoded from it. The claim is not verified: it is a UI hint, and the
// directory service authorizes every request on its own.
type Credential struct {
	Token   string
	Role    string
	UserID  string
	Present bool
}
