package render

// SectionContext is the data of the section template.
type SectionContext struct {
	TestID            string
	ClassName         string
	ModuleName        string
	TestKitModuleName string
	Title             string
	Description       string
	SectionCode       string
	// TargetResourcesAndProfiles lists "Type::profile" pairs joined by ";".
	TargetResourcesAndProfiles string
	Optional                   bool
}

// EntryContext is the data of the entry template.
type EntryContext struct {
	TestID            string
	ClassName         string
	ModuleName        string
	TestKitModuleName string
	ResourceType      string
	ProfileURL        string
	Title             string
	Optional          bool
}

// StaticContext is the data of a static check template.
type StaticContext struct {
	TestID            string
	ClassName         string
	ModuleName        string
	TestKitModuleName string
	ProfileURL        string
	Title             string
	Description       string
}

// TestRef is one test an aggregator pulls in.
type TestRef struct {
	ID   string
	File string // Path relative to the aggregator file, without extension
}

// GroupContext is the data of the group template.
type GroupContext struct {
	GroupID           string
	ClassName         string
	ModuleName        string
	TestKitModuleName string
	Title             string
	Description       string
	Tests             []TestRef
}

// SuiteContext is the data of the suite template.
type SuiteContext struct {
	SuiteID           string
	ClassName         string
	ModuleName        string
	TestKitModuleName string
	Title             string
	Description       string
	TxServerURL       string
	IGs               string
	Groups            []TestRef
}
