package diningplan

import (
	"fmt"
	"strconv"
)

func needRestaurantMessage() string {
	return fmt.Sprintf(`🍽️ **Dining Plan Request**

To create a personalized dining plan for %s, I need to know which restaurant you'd like to visit.

**Please either:**
1. **Specify a restaurant**: "Create dining plan for [Restaurant Name]"
2. **Let me search**: "Find restaurants near me" (then I'll create a plan for one of them)

**Example requests:**
- "Dining plan for Momo Chowmein"
- "Find Hakka restaurants in Etobicoke, then create dining plan"

Once you specify a restaurant, I'll:
🌐 Find their menu online
💰 Create itemized bill with correct tax rates
🍽️ Suggest family-friendly portions`, PartySize)
}

func needMenuURLMessage(name, searchPreview string) string {
	return fmt.Sprintf(`🍽️ **Dining Plan Request for %[1]s**

I found information about %[1]s but need a direct menu URL to create a detailed dining plan.

**Search Results:**
%[2]s...

**To create a dining plan, please:**
1. Provide the restaurant's menu URL, or
2. Let me search for more specific menu information

**Example:** "Create dining plan for %[1]s using menu from [URL]"`, name, searchPreview)
}

func menuUnavailableMessage(name string) string {
	return fmt.Sprintf("Could not access menu for %s. Please provide a direct menu URL or try a different restaurant.", name)
}

func failedMessage(reason any) string {
	return fmt.Sprintf("Failed to create dining plan: %v", reason)
}

type report struct {
	name          string
	url           string
	contentLength int
	jurisdiction  Jurisdiction
	preview       string
}

func (r report) String() string {
	rate := formatRate(r.jurisdiction.Rate)
	return fmt.Sprintf(`🍽️ **Dining Plan Analysis for %[1]s**

**✅ Menu Successfully Found and Scraped!**
**Menu URL:** %[2]s
**Content Retrieved:** %[3]d characters
**Location:** %[4]s
**Tax Rate:** %[5]s%%

**Menu Preview:**
%[6]s...

**✅ REAL MENU DATA CONFIRMED**
This is actual scraped content from %[2]s, not generated data.

**Next:** Ready to create itemized dining plan using actual menu items and correct %[5]s%% tax rate for %[7]s.`,
		r.name, r.url, r.contentLength, r.jurisdiction.Label, rate, r.preview, PartySize)
}

// formatRate prints 13 as "13" and 8.5 as "8.5".
func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
