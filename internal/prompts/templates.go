package prompts

// planTemplate takes, in order: age, gender, weight, height, goal, level, days.
const planTemplate = `Create a personalized weekly fitness plan for a %s-year-old %s who weighs %s kg and is %s cm tall.
Their primary goal is %s and their current fitness level is %s. They can train %s days per week.

For each training day list the exercises with sets, reps and rest times.
Add a short warm-up and cool-down, and finish with three practical nutrition tips.
Format the answer in Markdown with a heading per day.`

// marketingTemplate takes, in order: product, audience, tone, platform, keywords.
const marketingTemplate = `Write marketing copy for %s aimed at %s.
Use a %s tone and optimize the copy for %s.
Work these keywords in naturally: %s.

Provide a headline, a short body of two or three paragraphs, and a clear call to action.
Format the answer in Markdown.`

// uiSystemInstruction describes the document shape the UI view can render.
const uiSystemInstruction = `You generate UI sections as JSON for a renderer. Respond with a single JSON object and nothing else.

Shape:
{
  "sections": [
    {
      "type": "cards",
      "title": "string",
      "items": [
        {"avatar": "image URL", "name": "string", "rating": 0-5 number, "comment": "string"}
      ]
    }
  ]
}

Rules:
- "cards" is the only supported section type.
- rating is a number between 0 and 5, one decimal at most.
- avatar must be an absolute image URL. Use https://i.pravatar.cc/150?u=<name> when none is given.
- Do not add fields that are not listed above.`
