package analysis

import (
	"fmt"
	"strings"
	"time"
)

// Hint is an optional instrument match for the user's query, passed to the
// model so it searches the right listing.
type Hint struct {
	Ticker    string
	Name      string
	ClassCode string
}

const promptHeader = `You are a professional financial analyst.
Please search for the latest financial data and news for the stock: "%s".
`

const promptBody = `
I need you to find and calculate the following specific metrics based on the most recent available reports (Monthly Revenue, Quarterly Reports, or Annual Reports).

**Part 1: Financial Metrics**
1. Current Month Revenue (Identify the specific month, e.g., "Nov 2024").
2. Accumulated Revenue Year-Over-Year (YoY) Growth Rate (%%). (Must be a number).
3. Current Quarter Gross Margin (%%). (Must be a number).
4. Accumulated Gross Margin (Year-to-Date) (%%). (Must be a number).
5. Accumulated Gross Margin YoY Growth Rate (%%). (This is the growth rate of the margin percentage itself).

**Part 2: News Search**
Search for recent news (within the last 3-6 months) about this company.
You must specifically look for articles that contain the following strategic keywords/concepts.

- **Expansion (擴廠)**
- **Factory Setup/Location (設廠, 在哪裡設廠)**
- **Investment Details (投資, 投資甚麼)**
- **Major Capital Expenditure (重大資本支出)**
- **Latest Technology (最新技術)**
- **Order Volume (訂單量)**
- **Cooperation with US Companies (與美國公司合作)**

**Part 3: Calculation**
Calculate the "Growth Score" using the Rule of 40 concept:
**Score = (Accumulated Revenue YoY %%) + (Accumulated Gross Margin %%)**

Determine if this Score is >= %g.

**OUTPUT FORMAT INSTRUCTION:**

Step 1: Provide a **brief analysis summary** in Traditional Chinese.
Step 2: Provide the **JSON Data** in a strictly formatted code block.

For the "news" "tags" array, you MUST classify the news into one or more of these EXACT English categories:
- %s

` + "```json" + `
{
  "financials": {
    "symbol": "Stock Symbol",
    "companyName": "Company Name",
    "currency": "Currency Code",
    "currentMonthRevenue": "Value string",
    "accumulatedRevenueYoY": Number,
    "currentQuarterGrossMargin": Number,
    "accumulatedGrossMargin": Number,
    "accumulatedGrossMarginYoY": Number
  },
  "news": [
    {
      "headline": "News Headline",
      "source": "News Source",
      "date": "Date string",
      "summary": "Brief summary",
      "tags": ["Expansion"]
    }
  ],
  "score": Number,
  "isHighGrowth": Boolean,
  "summary": "Brief analysis summary in Traditional Chinese"
}
` + "```\n"

// BuildPrompt renders the analyst prompt for query. hint may be nil.
func BuildPrompt(query string, hint *Hint, threshold float64, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(promptHeader, query))
	sb.WriteString(fmt.Sprintf("Today's date is %s.\n", now.Format("January 2, 2006")))

	if hint != nil && hint.Ticker != "" {
		if hint.Name != "" {
			sb.WriteString(fmt.Sprintf("The query most likely refers to %s (ticker %s).\n", hint.Name, hint.Ticker))
		} else {
			sb.WriteString(fmt.Sprintf("The query most likely refers to ticker %s.\n", hint.Ticker))
		}
	}

	tags := make([]string, 0, len(Categories))
	for _, c := range Categories {
		if c.ID == CategoryAll {
			continue
		}
		tags = append(tags, fmt.Sprintf("%q", c.ID))
	}

	sb.WriteString(fmt.Sprintf(promptBody, threshold, strings.Join(tags, ", ")))
	return sb.String()
}
