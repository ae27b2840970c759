package token

// Type is the type of a token.
type Type string

// Token represents a lexical token. For QUOTED and UNQUOTED tokens the
// Literal holds the text with escape sequences already resolved. For ILLEGAL
// tokens the Literal holds a diagnostic message.
type Token struct {
	Type    Type
	Literal string
	Line    int
	Column  int
}

const (
	// Special tokens
	ILLEGAL Type = "ILLEGAL" // An invalid token; Literal carries the reason
	EOF     Type = "EOF"     // End of input

	// Literals
	QUOTED   Type = "QUOTED"   // "hello world"
	UNQUOTED Type = "UNQUOTED" // hello

	// Delimiters
	LBRACE  Type = "{"
	RBRACE  Type = "}"
	NEWLINE Type = "NEWLINE" // \n

	// Comments
	COMMENT Type = "COMMENT" // / a comment, through end of line
)

// IsText reports whether t is a key/value bearing token.
func (t Type) IsText() bool {
	return t == QUOTED || t == UNQUOTED
}
