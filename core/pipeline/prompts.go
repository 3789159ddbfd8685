package pipeline

import (
	"fmt"

	"github.com/wikilens/policyref/model"
)

// systemPrompt frames every extraction request. The strict category
// separation matters: the model is asked for one category at a time and
// must not report shortcuts belonging to another.
const systemPrompt = `You are an expert Wikipedia policy analyst reading a talk page discussion.

You will be asked to find mentions of POLICIES, GUIDELINES or ESSAYS separately. Only report shortcuts that belong to the requested category. Matching is case-insensitive and includes bare forms without the WP: prefix (e.g. "UNDUE" for WP:NPOV's undue weight section). Never invent mentions that do not appear in the text.

Respond with one line per distinct shortcut in exactly this format:
SHORTCUT | quote from the discussion containing the mention

Use canonical shortcuts (WP:NPOV, WP:RS, MOS:LABEL). If nothing from the requested category is mentioned, respond with exactly: NONE`

var categoryPrompts = map[model.Category]string{
	model.CategoryPolicy: `Identify Wikipedia POLICIES mentioned in the discussion below. Policies are mandatory rules:
WP:NPOV (aliases WP:WEIGHT, WP:UNDUE, WP:DUE, WP:BALANCE), WP:V (WP:VERIFY, WP:CIRCULAR), WP:OR (WP:NOR), WP:NOT (WP:NOTCENSORED, WP:INDISCRIMINATE), WP:BLP, WP:PA (WP:NPA), WP:CIVIL, WP:AGF, WP:CON, WP:EW (WP:3RR).
Do not report guidelines (WP:RS, WP:N, WP:CITE, MOS:*) or essays (WP:1AM, WP:IAR).`,
	model.CategoryGuideline: `Identify Wikipedia GUIDELINES mentioned in the discussion below. Guidelines are best practices:
WP:RS (aliases WP:UGC, WP:SPS, WP:NEWSORG), WP:N (WP:GNG, WP:NOTABLE), WP:CITE, WP:EL, WP:MOS and any MOS:* shortcut, WP:BRD, WP:FRINGE, WP:COI.
Do not report policies (WP:NPOV, WP:V, WP:OR) or essays (WP:1AM, WP:IAR).`,
	model.CategoryEssay: `Identify Wikipedia ESSAYS mentioned in the discussion below. Essays are opinion or advice pages:
WP:1AM, WP:IAR, WP:DEADLINE, WP:COMMON, WP:STICK, WP:BEANS, WP:SNOW, WP:RANDY, WP:DNFTT.
Do not report policies or guidelines.`,
}

// analysisPrompt builds the user message for one category and one text
// chunk.
func analysisPrompt(category model.Category, chunk string) string {
	return fmt.Sprintf("%s\n\n=== DISCUSSION TEXT TO ANALYZE ===\n%s", categoryPrompts[category], chunk)
}
