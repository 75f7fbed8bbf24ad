package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Разбор строк лога
	ParseInfo              Code = 1000
	ParseMalformedLocation Code = 1001

	// Восстановление дерева инстанцирований
	TreeInfo         Code = 2000
	TreeExtraExit    Code = 2001
	TreeUnterminated Code = 2002

	// Выбор диалекта компилятора
	DialectInfo      Code = 3000
	DialectUnknown   Code = 3001
	DialectAmbiguous Code = 3002

	// I/O
	IOLoadFileError Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	ParseInfo:              "Log parsing information",
	ParseMalformedLocation: "Instantiation site is not a file:line location",
	TreeInfo:               "Call tree information",
	TreeExtraExit:          "Exit message without a matching enter",
	TreeUnterminated:       "Enter message without a matching exit",
	DialectInfo:            "Compiler dialect information",
	DialectUnknown:         "No compiler dialect matched the log",
	DialectAmbiguous:       "Several compiler dialects matched the log",
	IOLoadFileError:        "I/O load file error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("PRS%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("TRE%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("DLC%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
