package grace

// The runtime library's Grace-level signatures, in one table shared by
// the SST's pre-population (§4.1) and the LLVM declaration emission
// (§4.5), per the Design Notes' "keep both lists in one place."
//
// Every parameter is either "by value" (ByRef false) or "by reference"
// (ByRef true); array-like parameters are always by reference, with an
// unknown leading dimension, matching how a caller passes the address
// of any array-typed lvalue regardless of its declared size.

type runtimeParam struct {
	Name  string
	Type  FparType
	ByRef bool
}

type runtimeFunc struct {
	Name    string
	Ret     RetType
	Params  []runtimeParam
}

func charArrayRef() FparType {
	return FparType{Type: Type{Data: CharType}, UnknownLeadingDim: true}
}

var runtimeFuncs = []runtimeFunc{
	{Name: "writeInteger", Ret: RetType{Nothing: true}, Params: []runtimeParam{
		{Name: "n", Type: FparType{Type: Type{Data: IntType}}},
	}},
	{Name: "writeChar", Ret: RetType{Nothing: true}, Params: []runtimeParam{
		{Name: "c", Type: FparType{Type: Type{Data: CharType}}},
	}},
	{Name: "writeString", Ret: RetType{Nothing: true}, Params: []runtimeParam{
		{Name: "s", Type: charArrayRef(), ByRef: true},
	}},
	{Name: "readInteger", Ret: RetType{Data: IntType}},
	{Name: "readChar", Ret: RetType{Data: CharType}},
	{Name: "readString", Ret: RetType{Nothing: true}, Params: []runtimeParam{
		{Name: "n", Type: FparType{Type: Type{Data: IntType}}},
		{Name: "s", Type: charArrayRef(), ByRef: true},
	}},
	{Name: "ascii", Ret: RetType{Data: IntType}, Params: []runtimeParam{
		{Name: "c", Type: FparType{Type: Type{Data: CharType}}},
	}},
	{Name: "chr", Ret: RetType{Data: CharType}, Params: []runtimeParam{
		{Name: "n", Type: FparType{Type: Type{Data: IntType}}},
	}},
	{Name: "strlen", Ret: RetType{Data: IntType}, Params: []runtimeParam{
		{Name: "s", Type: charArrayRef(), ByRef: true},
	}},
	{Name: "strcmp", Ret: RetType{Data: IntType}, Params: []runtimeParam{
		{Name: "s1", Type: charArrayRef(), ByRef: true},
		{Name: "s2", Type: charArrayRef(), ByRef: true},
	}},
	{Name: "strcpy", Ret: RetType{Nothing: true}, Params: []runtimeParam{
		{Name: "trg", Type: charArrayRef(), ByRef: true},
		{Name: "src", Type: charArrayRef(), ByRef: true},
	}},
	{Name: "strcat", Ret: RetType{Nothing: true}, Params: []runtimeParam{
		{Name: "trg", Type: charArrayRef(), ByRef: true},
		{Name: "src", Type: charArrayRef(), ByRef: true},
	}},
}

// condensedParams groups each runtime parameter as its own
// single-identifier condensed group; the runtime table is hand-written
// so there is no identifier-list to fold together.
func (f runtimeFunc) condensedParams() []CondensedParam {
	out := make([]CondensedParam, 0, len(f.Params))
	for _, p := range f.Params {
		out = append(out, CondensedParam{Type: p.Type, Count: 1, ByRef: p.ByRef})
	}
	return out
}
