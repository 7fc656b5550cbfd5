package source

// Stable diagnostic codes, one constant per distinct error or warning the
// compiler can emit. Exit code of the outer CLI is nonzero whenever any code here
// is emitted at SeverityError.
const (
	// I/O
	CodeIoError       = "E0001"
	CodeEncodingError = "E0002"

	// Lex
	CodeUnterminatedBlockComment = "E0101"
	CodeBadCharLiteral           = "E0102"
	CodeBadStringLiteral         = "E0103"
	CodeBadNumericLiteral        = "E0104"
	CodeUnexpectedCharacter      = "E0105"
	CodeReservedIdentifier       = "E0106"

	// Parse
	CodeUnexpectedToken     = "E0201"
	CodeExpectedDeclaration = "E0202"
	CodeExpectedExpression  = "E0203"
	CodeChainedComparison   = "E0204"

	// Name
	CodeDuplicateDefinition = "E0301"
	CodeUnresolvedName      = "E0302"
	CodeUnresolvedImport    = "E0303"
	CodeImportCycle         = "E0304"
	CodeTypeAliasCycle      = "E0305"
	CodeCircularCircuit     = "E0306"

	// Type
	CodeTypeMismatch          = "E0401"
	CodeArityMismatch         = "E0402"
	CodeUnknownCircuitMember  = "E0403"
	CodeMissingCircuitMember  = "E0404"
	CodeNotCallable           = "E0405"
	CodeCastOutOfRange        = "E0406"
	CodeAmbiguousNumericLit   = "E0407"
	CodeUnresolvedArraySize   = "E0408"

	// Const-eval
	CodeConstOverflow        = "E0501"
	CodeDivideByZero         = "E0502"
	CodeNonConstInConstCtx   = "E0503"

	// Semantic
	CodeAssignToConst          = "E0601"
	CodeUseOfSelfOutsideCircuit = "E0602"
	CodeReturnTypeMismatch      = "E0603"
	CodeLoopBoundsNotConst      = "E0604"
	CodeNoEntryPoint            = "E0605"
	CodeMultipleEntryPoints      = "E0606"

	// Warnings
	CodeUnknownAnnotation = "W0701"
)
