package prompt

// Prefix is prepended to every expression to form the edit instruction.
const Prefix = "make the character"

// Expressions is the fixed catalog of requested expressions. Order matters:
// results are reported in this order.
var Expressions = []string{
	"smile",
	"laughing",
	"crying",
	"angry",
	"surprised",
	"confused",
	"sad",
	"grinning with teeth",
	"disgusted",
	"pouting",
	"scared",
	"looking down in shape",
	"annoyed",
	"sleeping",
	"excited",
	"with a neutral expression",
}

func Build(expression string) string {
	return Prefix + " " + expression
}
