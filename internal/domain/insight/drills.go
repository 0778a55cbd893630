package insight

// Drill is one suggested practice exercise.
type Drill struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// drillTrigger identifies which metric threshold fired.
type drillTrigger int

const (
	triggerWideGroups drillTrigger = iota
	triggerOffCenter
	triggerHighOutlierRate
)

// drillTable maps fired thresholds to suggested drills. Fixed and ordered so
// the same metrics always produce the same suggestions.
var drillTable = map[drillTrigger][]Drill{
	triggerWideGroups: {
		{Name: "five-shot groups", Description: "Shoot slow five-shot groups at reduced distance, focusing only on a repeatable hold."},
		{Name: "wall drill", Description: "Dry-fire against a blank wall to isolate hold stability from aiming."},
	},
	triggerOffCenter: {
		{Name: "sight alignment check", Description: "Confirm sight alignment from a rest, then re-zero if the bias persists without you."},
		{Name: "natural point of aim", Description: "Close your eyes, settle, open: adjust your stance until the sights return to center on their own."},
	},
	triggerHighOutlierRate: {
		{Name: "ball and dummy", Description: "Mix dummy rounds into a magazine to expose flinch on the trigger break."},
		{Name: "trigger-only dry fire", Description: "Ten slow dry presses watching for any sight movement at the break."},
	},
}

// triggerOrder fixes the drill ordering in the output payload.
var triggerOrder = []drillTrigger{triggerWideGroups, triggerOffCenter, triggerHighOutlierRate}

// drillsFor flattens the drill table entries for the fired triggers,
// preserving table order.
func drillsFor(fired []drillTrigger) []Drill {
	set := make(map[drillTrigger]bool, len(fired))
	for _, t := range fired {
		set[t] = true
	}
	var out []Drill
	for _, t := range triggerOrder {
		if set[t] {
			out = append(out, drillTable[t]...)
		}
	}
	return out
}
