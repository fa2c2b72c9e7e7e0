package vm

type Opcode uint8

const (
	NOP Opcode = iota
	// | A | B | C | Arg | Flag |
	JUMP         // | | | | target | |
	JUMP_IF      // | cond | | | target | not |
	CALL         // | fn | args | dst | argc | has dst |
	RETURN       // | src | | | | has src |
	MOVE         // | dst | src | | | |
	LOAD_STRING  // | dst | | | string addr | |
	LOAD_NUMBER  // | dst | | | number addr | |
	LOAD_CLOSURE // | dst | | | closure addr | |
	LOAD_GLOBAL  // | dst | | | name addr | |
	STORE_GLOBAL // | src | | | name addr | |

	// Binary operations: A = B op C
	ADD
	SUB
	MUL
	DIV
	MOD
	POW
	EQ
	NE
	LT
	GT
	LE
	GE
	AND
	OR

	// Unary operations: A = op B
	NEG
	NOT

	OpcodeMax
)

func (o Opcode) String() string {
	switch o {
	case NOP:
		return "NOP"
	case JUMP:
		return "JUMP"
	case JUMP_IF:
		return "JUMP_IF"
	case CALL:
		return "CALL"
	case RETURN:
		return "RETURN"
	case MOVE:
		return "MOVE"
	case LOAD_STRING:
		return "LOAD_STRING"
	case LOAD_NUMBER:
		return "LOAD_NUMBER"
	case LOAD_CLOSURE:
		return "LOAD_CLOSURE"
	case LOAD_GLOBAL:
		return "LOAD_GLOBAL"
	case STORE_GLOBAL:
		return "STORE_GLOBAL"
	case ADD:
		return "ADD"
	case SUB:
		return "SUB"
	case MUL:
		return "MUL"
	case DIV:
		return "DIV"
	case MOD:
		return "MOD"
	case POW:
		return "POW"
	case EQ:
		return "EQ"
	case NE:
		return "NE"
	case LT:
		return "LT"
	case GT:
		return "GT"
	case LE:
		return "LE"
	case GE:
		return "GE"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case NEG:
		return "NEG"
	case NOT:
		return "NOT"
	}
	panic("Unnamed opcode")
}

// IsBinary reports whether o is a three-register binary operation.
func (o Opcode) IsBinary() bool {
	return o >= ADD && o <= OR
}

func (o Opcode) IsUnary() bool {
	return o == NEG || o == NOT
}

// Symbol returns the source-level operator for a binary or unary opcode.
func (o Opcode) Symbol() string {
	switch o {
	case ADD:
		return "+"
	case SUB, NEG:
		return "-"
	case MUL:
		return "*"
	case DIV:
		return "/"
	case MOD:
		return "%"
	case POW:
		return "^"
	case EQ:
		return "=="
	case NE:
		return "!="
	case LT:
		return "<"
	case GT:
		return ">"
	case LE:
		return "<="
	case GE:
		return ">="
	case AND:
		return "&"
	case OR:
		return "|"
	case NOT:
		return "!"
	}
	return o.String()
}
