package evaluator

// Package-private builtin function registry.
//
// initBuiltinFunctions is called lazily, once, from Evaluator.lookupBuiltin
// in evaluator.go; it must live in this package (not a separate
// pkg/functions package) because every FunctionImpl closes over
// *Evaluator/*Environment/*Lambda, all defined here, and evaluator.go needs
// to call into the registry — a separate package would need to import
// this one while being imported by it.
func initBuiltinFunctions() map[string]*FunctionDef {
	return map[string]*FunctionDef{
		// Aggregation
		"sum":     {Name: "sum", MinArgs: 1, MaxArgs: 1, Impl: fnSum},
		"count":   {Name: "count", MinArgs: 1, MaxArgs: 1, Impl: fnCount},
		"average": {Name: "average", MinArgs: 1, MaxArgs: 1, Impl: fnAverage},
		"min":     {Name: "min", MinArgs: 1, MaxArgs: 1, Impl: fnMin},
		"max":     {Name: "max", MinArgs: 1, MaxArgs: 1, Impl: fnMax},

		// Array / higher-order
		"map":      {Name: "map", MinArgs: 2, MaxArgs: 2, Impl: fnMap},
		"filter":   {Name: "filter", MinArgs: 2, MaxArgs: 2, Impl: fnFilter},
		"reduce":   {Name: "reduce", MinArgs: 2, MaxArgs: 3, Impl: fnReduce},
		"single":   {Name: "single", MinArgs: 1, MaxArgs: 2, Impl: fnSingle},
		"sort":     {Name: "sort", MinArgs: 1, MaxArgs: 2, Impl: fnSort},
		"append":   {Name: "append", MinArgs: 2, MaxArgs: 2, Impl: fnAppend},
		"reverse":  {Name: "reverse", MinArgs: 1, MaxArgs: 1, Impl: fnReverse},
		"distinct": {Name: "distinct", MinArgs: 1, MaxArgs: 1, Impl: fnDistinct},
		"shuffle":  {Name: "shuffle", MinArgs: 1, MaxArgs: 1, Impl: fnShuffle},
		"zip":      {Name: "zip", MinArgs: 1, MaxArgs: -1, Impl: fnZip},

		// String
		"string":          {Name: "string", MinArgs: 0, MaxArgs: 2, AcceptsContext: true, Impl: fnString},
		"length":          {Name: "length", MinArgs: 1, MaxArgs: 1, Impl: fnLength},
		"substring":       {Name: "substring", MinArgs: 2, MaxArgs: 3, Impl: fnSubstring},
		"uppercase":       {Name: "uppercase", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnUppercase},
		"lowercase":       {Name: "lowercase", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnLowercase},
		"trim":            {Name: "trim", MinArgs: 0, MaxArgs: 1, AcceptsContext: true, Impl: fnTrim},
		"contains":        {Name: "contains", MinArgs: 2, MaxArgs: 2, Impl: fnContains},
		"split":           {Name: "split", MinArgs: 2, MaxArgs: 3, Impl: fnSplit},
		"join":            {Name: "join", MinArgs: 1, MaxArgs: 2, Impl: fnJoin},
		"pad":             {Name: "pad", MinArgs: 2, MaxArgs: 3, Impl: fnPad},
		"substringBefore": {Name: "substringBefore", MinArgs: 2, MaxArgs: 2, AcceptsContext: true, Impl: fnSubstringBefore},
		"substringAfter":  {Name: "substringAfter", MinArgs: 2, MaxArgs: 2, AcceptsContext: true, Impl: fnSubstringAfter},

		// Type
		"type":    {Name: "type", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnType},
		"exists":  {Name: "exists", MinArgs: 1, MaxArgs: 1, Impl: fnExists},
		"number":  {Name: "number", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnNumber},
		"boolean": {Name: "boolean", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnBoolean},
		"not":     {Name: "not", MinArgs: 1, MaxArgs: 1, Impl: fnNot},

		// Math
		"abs":    {Name: "abs", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnAbs},
		"floor":  {Name: "floor", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnFloor},
		"ceil":   {Name: "ceil", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnCeil},
		"round":  {Name: "round", MinArgs: 1, MaxArgs: 2, AcceptsContext: true, Impl: fnRound},
		"sqrt":   {Name: "sqrt", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnSqrt},
		"power":  {Name: "power", MinArgs: 2, MaxArgs: 2, Impl: fnPower},
		"random": {Name: "random", MinArgs: 0, MaxArgs: 0, Impl: fnRandom},

		// Object
		"each":   {Name: "each", MinArgs: 2, MaxArgs: 2, AcceptsContext: true, Impl: fnEach},
		"sift":   {Name: "sift", MinArgs: 2, MaxArgs: 2, AcceptsContext: true, Impl: fnSift},
		"keys":   {Name: "keys", MinArgs: 1, MaxArgs: 1, Impl: fnKeys},
		"lookup": {Name: "lookup", MinArgs: 2, MaxArgs: 2, Impl: fnLookup},
		"merge":  {Name: "merge", MinArgs: 1, MaxArgs: 1, Impl: fnMerge},
		"spread": {Name: "spread", MinArgs: 1, MaxArgs: 1, Impl: fnSpread},
		"error":  {Name: "error", MinArgs: 0, MaxArgs: 1, Impl: fnError},
		"assert": {Name: "assert", MinArgs: 1, MaxArgs: 2, Impl: fnAssert},
		"eval":   {Name: "eval", MinArgs: 0, MaxArgs: 2, Impl: fnEval},

		// Regex
		"match":   {Name: "match", MinArgs: 2, MaxArgs: 3, Impl: fnMatch},
		"replace": {Name: "replace", MinArgs: 3, MaxArgs: 4, Impl: fnReplace},

		// Date/time
		"now":        {Name: "now", MinArgs: 0, MaxArgs: 2, Impl: fnNow},
		"millis":     {Name: "millis", MinArgs: 0, MaxArgs: 0, Impl: fnMillis},
		"fromMillis": {Name: "fromMillis", MinArgs: 1, MaxArgs: 3, Impl: fnFromMillis},
		"toMillis":   {Name: "toMillis", MinArgs: 1, MaxArgs: 2, Impl: fnToMillis},

		// Encoding
		"base64encode":       {Name: "base64encode", MinArgs: 0, MaxArgs: 1, AcceptsContext: true, Impl: fnBase64Encode},
		"base64decode":       {Name: "base64decode", MinArgs: 0, MaxArgs: 1, AcceptsContext: true, Impl: fnBase64Decode},
		"encodeUrl":          {Name: "encodeUrl", MinArgs: 1, MaxArgs: 1, Impl: fnEncodeUrl},
		"decodeUrl":          {Name: "decodeUrl", MinArgs: 1, MaxArgs: 1, Impl: fnDecodeUrl},
		"encodeUrlComponent": {Name: "encodeUrlComponent", MinArgs: 1, MaxArgs: 1, Impl: fnEncodeUrlComponent},
		"decodeUrlComponent": {Name: "decodeUrlComponent", MinArgs: 1, MaxArgs: 1, Impl: fnDecodeUrlComponent},

		// Number formatting
		"formatNumber":  {Name: "formatNumber", MinArgs: 1, MaxArgs: 3, Impl: fnFormatNumber},
		"formatBase":    {Name: "formatBase", MinArgs: 1, MaxArgs: 2, Impl: fnFormatBase},
		"formatInteger": {Name: "formatInteger", MinArgs: 1, MaxArgs: 2, Impl: fnFormatInteger},
		"parseInteger":  {Name: "parseInteger", MinArgs: 1, MaxArgs: 2, Impl: fnParseInteger},

		// Extensions beyond the reference JSONata library: array slicing
		// and set operations, object reshaping, case-convention and
		// templating helpers, digests.
		"first":        {Name: "first", MinArgs: 1, MaxArgs: 1, Impl: fnFirst},
		"last":         {Name: "last", MinArgs: 1, MaxArgs: 1, Impl: fnLast},
		"take":         {Name: "take", MinArgs: 2, MaxArgs: 2, Impl: fnTake},
		"skip":         {Name: "skip", MinArgs: 2, MaxArgs: 2, Impl: fnSkip},
		"slice":        {Name: "slice", MinArgs: 2, MaxArgs: 3, Impl: fnSlice},
		"flatten":      {Name: "flatten", MinArgs: 1, MaxArgs: 2, Impl: fnFlatten},
		"chunk":        {Name: "chunk", MinArgs: 2, MaxArgs: 2, Impl: fnChunk},
		"union":        {Name: "union", MinArgs: 2, MaxArgs: 2, Impl: fnUnion},
		"intersection": {Name: "intersection", MinArgs: 2, MaxArgs: 2, Impl: fnIntersection},
		"difference":   {Name: "difference", MinArgs: 2, MaxArgs: 2, Impl: fnDifference},

		"values":    {Name: "values", MinArgs: 1, MaxArgs: 1, Impl: fnValues},
		"pairs":     {Name: "pairs", MinArgs: 1, MaxArgs: 1, Impl: fnPairs},
		"fromPairs": {Name: "fromPairs", MinArgs: 1, MaxArgs: 1, Impl: fnFromPairs},
		"pick":      {Name: "pick", MinArgs: 2, MaxArgs: 2, Impl: fnPick},
		"omit":      {Name: "omit", MinArgs: 2, MaxArgs: 2, Impl: fnOmit},
		"deepMerge": {Name: "deepMerge", MinArgs: 1, MaxArgs: 1, Impl: fnDeepMerge},
		"invert":    {Name: "invert", MinArgs: 1, MaxArgs: 1, Impl: fnInvert},

		"startsWith": {Name: "startsWith", MinArgs: 2, MaxArgs: 2, AcceptsContext: true, Impl: fnStartsWith},
		"endsWith":   {Name: "endsWith", MinArgs: 2, MaxArgs: 2, AcceptsContext: true, Impl: fnEndsWith},
		"indexOf":    {Name: "indexOf", MinArgs: 2, MaxArgs: 3, AcceptsContext: true, Impl: fnIndexOf},
		"capitalize": {Name: "capitalize", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnCapitalize},
		"camelCase":  {Name: "camelCase", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnCamelCase},
		"snakeCase":  {Name: "snakeCase", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnSnakeCase},
		"kebabCase":  {Name: "kebabCase", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnKebabCase},
		"repeat":     {Name: "repeat", MinArgs: 2, MaxArgs: 2, Impl: fnRepeat},
		"words":      {Name: "words", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnWords},
		"template":   {Name: "template", MinArgs: 2, MaxArgs: 2, Impl: fnTemplate},

		"hash": {Name: "hash", MinArgs: 2, MaxArgs: 2, Impl: fnHash},
		"hmac": {Name: "hmac", MinArgs: 3, MaxArgs: 3, Impl: fnHMAC},
		"uuid": {Name: "uuid", MinArgs: 0, MaxArgs: 0, Impl: fnUUID},
	}
}
