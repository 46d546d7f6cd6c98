package prompt

// Template sources, one per task. Placeholders name Fields members.
var templates = map[TaskKind]string{
	TaskOutline: `Create a detailed research paper outline for the topic: {{.Topic}}.
Keywords: {{.Keywords}}

Follow this structure:
1. Introduction
   - Background
   - Problem Statement
   - Research Objectives
2. Literature Review
   - Previous Work
   - Current State of Research
3. Methodology
   - Data Collection
   - Machine Learning Approach
   - Evaluation Metrics
4. Results and Discussion
   - Analysis
   - Findings
5. Conclusion
   - Summary
   - Future Work

Outline:`,

	TaskAbstract: `Write a professional academic abstract for a research paper on {{.Topic}}.

Key points to include:
{{.KeyPoints}}

The abstract should be concise, clear, and follow the standard academic format including:
- Problem statement
- Methodology
- Key findings
- Implications

Abstract:`,

	TaskSection: `Write the {{.SectionName}} section for a research paper.
Title: {{.Title}}
Topic: {{.Topic}}
Keywords: {{.Keywords}}
Instructions: {{.Instructions}}

{{.SectionName}}:`,

	TaskLiteratureReview: `Write a comprehensive literature review for {{.Topic}} based on these papers:

{{.Papers}}

The literature review should:
1. Synthesize the key findings
2. Identify research gaps
3. Compare different approaches
4. Discuss implications

Literature Review:`,

	TaskKeyPoints: `Extract and organize the key points from the following text:

{{.RawText}}

Format the key points as a structured list with:
- Main points
- Supporting evidence
- Implications

Key Points:`,
}
