package ast

type BinaryOperator int

const (
	Plus             BinaryOperator = iota // +
	Minus                                  // -
	Star                                   // *
	Slash                                  // /
	Percent                                // %
	Exponent                               // ^
	EqualEqual                             // ==
	ExclamationEqual                       // !=
	Less                                   // <
	Greater                                // >
	LessEqual                              // <=
	GreaterEqual                           // >=
	Ampersand                              // &
	Pipe                                   // |
)

func (o BinaryOperator) String() string {
	switch o {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Star:
		return "*"
	case Slash:
		return "/"
	case Percent:
		return "%"
	case Exponent:
		return "^"
	case EqualEqual:
		return "=="
	case ExclamationEqual:
		return "!="
	case Less:
		return "<"
	case Greater:
		return ">"
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Ampersand:
		return "&"
	case Pipe:
		return "|"
	}
	return "?"
}

type UnaryOperator int

const (
	Negate      UnaryOperator = iota // -
	Exclamation                      // !
)

func (o UnaryOperator) String() string {
	switch o {
	case Negate:
		return "-"
	case Exclamation:
		return "!"
	}
	return "?"
}
