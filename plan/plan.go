package plan

// Step operations.
const (
	OpMap     = "map"
	OpFilter  = "filter"
	OpFlatMap = "flat_map"
	OpTake    = "take"
	OpDrop    = "drop"
	OpTail    = "tail"
	OpAppend  = "append"
	OpPrepend = "prepend"
)

// Plan is a named, ordered list of steps over string elements.
type Plan struct {
	Name string `yaml:"name" validate:"required"`
	// ID optionally ties runs of this plan together in logs and traces.
	ID          string   `yaml:"id,omitempty" validate:"omitempty,uuid"`
	Description string   `yaml:"description,omitempty"`
	Includes    []string `yaml:"includes,omitempty" validate:"dive,required"`
	Steps       []Step   `yaml:"steps" validate:"dive"`
}

// Step is one transform. Which of Func, Arg, N and Value apply depends on Op.
type Step struct {
	Op    string  `yaml:"op" validate:"required,oneof=map filter flat_map take drop tail append prepend"`
	Func  string  `yaml:"func,omitempty"`
	Arg   string  `yaml:"arg,omitempty"`
	N     *int    `yaml:"n,omitempty" validate:"omitempty,gte=0"`
	Value *string `yaml:"value,omitempty"`
}
