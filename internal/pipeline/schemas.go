// internal/pipeline/schemas.go
package pipeline

import "github.com/user/magnus/pkg/llm"

// genericSchema shapes the default structured reply: free text plus optional
// location, code block and drafted actions.
func genericSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"response": {Type: llm.TypeString, Description: "The assistant's response to the user."},
			"language": {Type: llm.TypeString, Description: "The BCP-47 language code of the response (e.g., 'en-US', 'fr-FR')."},
			"location": {
				Type:        llm.TypeObject,
				Description: "If the query is about a mappable location, provide its details here. Omit otherwise.",
				Properties: map[string]*llm.Schema{
					"name":      {Type: llm.TypeString},
					"address":   {Type: llm.TypeString},
					"latitude":  {Type: llm.TypeNumber},
					"longitude": {Type: llm.TypeNumber},
				},
			},
			"codeBlock": {
				Type:        llm.TypeObject,
				Description: "If the user's request is to write code, provide the details here. Omit otherwise.",
				Properties: map[string]*llm.Schema{
					"language":        {Type: llm.TypeString, Description: "The programming language (e.g., 'python', 'javascript')."},
					"code":            {Type: llm.TypeString, Description: "The generated code snippet."},
					"explanation":     {Type: llm.TypeString, Description: "A brief explanation of the code."},
					"simulatedOutput": {Type: llm.TypeString, Description: "The simulated terminal output when the code is run."},
				},
				Required: []string{"language", "code", "explanation", "simulatedOutput"},
			},
			"actions": {
				Type:        llm.TypeArray,
				Description: "A list of automated tasks the AI can perform. Omit if no actions are possible.",
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"type":        {Type: llm.TypeString, Enum: []string{"send_email", "schedule_meeting", "fetch_report"}},
						"description": {Type: llm.TypeString, Description: "A user-friendly description of the action."},
						"parameters": {
							Type:        llm.TypeObject,
							Description: "Parameters for the action. Fill only the relevant fields for the action type.",
							Properties: map[string]*llm.Schema{
								"to":          {Type: llm.TypeString, Description: "Recipient's email address."},
								"subject":     {Type: llm.TypeString, Description: "Subject of the email."},
								"body":        {Type: llm.TypeString, Description: "Body of the email."},
								"summary":     {Type: llm.TypeString, Description: "Title or summary of the meeting."},
								"description": {Type: llm.TypeString, Description: "Detailed description or agenda for the meeting."},
								"start_time":  {Type: llm.TypeString, Description: "Start time in ISO 8601 format."},
								"end_time":    {Type: llm.TypeString, Description: "End time in ISO 8601 format."},
								"url":         {Type: llm.TypeString, Description: "URL of the report to fetch."},
								"attendees": {
									Type:        llm.TypeArray,
									Description: "A list of attendee email addresses.",
									Items:       &llm.Schema{Type: llm.TypeString},
								},
							},
						},
					},
					Required: []string{"type", "description", "parameters"},
				},
			},
		},
		Required: []string{"response", "language"},
	}
}

// agenticSchema shapes the four-step workflow reply.
func agenticSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"perceive": {Type: llm.TypeString},
			"reason":   {Type: llm.TypeString},
			"act":      {Type: llm.TypeString},
			"learn":    {Type: llm.TypeString},
		},
		Required: []string{"perceive", "reason", "act", "learn"},
	}
}

func translationSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"translation":  {Type: llm.TypeString, Description: "The translated text in the target language."},
			"phonetic":     {Type: llm.TypeString, Description: "The phonetic spelling of the translation."},
			"languageCode": {Type: llm.TypeString, Description: "The BCP-47 language code for the translation (e.g., 'ja-JP', 'zh-CN')."},
		},
		Required: []string{"translation", "phonetic", "languageCode"},
	}
}

func musicSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"title":       {Type: llm.TypeString},
			"artist":      {Type: llm.TypeString},
			"description": {Type: llm.TypeString},
			"tempo":       {Type: llm.TypeInteger, Description: "The tempo in beats per minute."},
			"mood":        {Type: llm.TypeString, Enum: []string{"upbeat", "somber", "ethereal", "driving", "mellow"}},
			"youtubeLinks": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"title": {Type: llm.TypeString},
						"url":   {Type: llm.TypeString, Description: "The full YouTube URL."},
					},
				},
			},
		},
		Required: []string{"title", "artist", "description", "tempo", "mood", "youtubeLinks"},
	}
}

func videoSearchSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeArray,
		Items: &llm.Schema{
			Type: llm.TypeObject,
			Properties: map[string]*llm.Schema{
				"title":       {Type: llm.TypeString},
				"description": {Type: llm.TypeString, Description: "A brief, 1-2 sentence description of the video."},
				"url":         {Type: llm.TypeString, Description: "The full YouTube URL."},
				"videoId":     {Type: llm.TypeString, Description: "The 11-character YouTube video ID."},
			},
			Required: []string{"title", "description", "url", "videoId"},
		},
	}
}

func playbackSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"videoId":    {Type: llm.TypeString, Description: "The 11-character YouTube video ID."},
			"songTitle":  {Type: llm.TypeString, Description: "The official title of the video found."},
			"artistName": {Type: llm.TypeString, Description: "The main artist or channel of the video found."},
		},
		Required: []string{"videoId", "songTitle", "artistName"},
	}
}

func locationSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"response": {Type: llm.TypeString, Description: "A helpful description of the location."},
			"language": {Type: llm.TypeString, Description: "BCP-47 language code of the response."},
			"location": {
				Type:        llm.TypeObject,
				Description: "The precise details of the identified location. This field is mandatory.",
				Properties: map[string]*llm.Schema{
					"name":      {Type: llm.TypeString},
					"address":   {Type: llm.TypeString},
					"latitude":  {Type: llm.TypeNumber},
					"longitude": {Type: llm.TypeNumber},
				},
				Required: []string{"name", "address", "latitude", "longitude"},
			},
		},
		Required: []string{"response", "language", "location"},
	}
}

func studyGuideSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"topic":   {Type: llm.TypeString},
			"summary": {Type: llm.TypeString},
			"keyConcepts": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"concept":     {Type: llm.TypeString},
						"explanation": {Type: llm.TypeString},
					},
				},
			},
			"practiceQuestions": {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}},
			"furtherReading":    {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}},
		},
		Required: []string{"topic", "summary", "keyConcepts", "practiceQuestions", "furtherReading"},
	}
}
