package analyzer

// Level is the severity of a Warning.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "Info"
	case LevelWarning:
		return "Warning"
	case LevelError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Warning is an advisory produced during analysis. Package holds the
// package name, or the document path for document-level problems.
type Warning struct {
	Package string
	Message string
	Level   Level
}

func malformedWarning(doc Document, err error) Warning {
	return Warning{
		Package: doc.Path,
		Message: "Failed to parse project file: " + err.Error(),
		Level:   LevelError,
	}
}
