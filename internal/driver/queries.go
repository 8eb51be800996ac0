package driver

const (
	// SeedTopicsQuery upserts the session together with its selectable topic
	// seeds. Topic answers are merged on a synthetic id so a topic never
	// collides with a real in-game answer of the same text; regular answers
	// carry topic: false in their merge key so they never bind a seed.
	SeedTopicsQuery = `
		MERGE (s:Session {id: $session_id})
		WITH s
		UNWIND $topics AS topic
		MERGE (a:Answer {id: topic.id})
		SET a.text = topic.text,
			a.topic = true
		MERGE (s)-[:HAS_OPTION]->(a)
	`

	SaveFirstQuestionQuery = `
		MERGE (s:Session {id: $session_id})
		MERGE (q:Question {text: $question})
		MERGE (s)-[:NEXT]->(q)
		WITH q
		UNWIND $options AS opt
		MERGE (a:Answer {text: opt.text, topic: false})
		SET a.isCorrect = opt.isCorrect
		MERGE (q)-[:HAS_OPTION]->(a)
	`

	MatchQuestionAnswerQuery = `
		MATCH (q:Question {text: $question})
		MATCH (a:Answer {text: $answer, topic: false})
		RETURN q.text AS question, a.text AS answer
	`

	// SaveSelectedAnswerQuery records the chosen answer and links the follow-up
	// question. SELECTED is CREATEd, not merged: it is a historical event.
	SaveSelectedAnswerQuery = `
		MATCH (q:Question {text: $question})
		MATCH (a:Answer {text: $answer, topic: false})
		CREATE (q)-[:SELECTED]->(a)
		MERGE (next:Question {text: $next_question})
		MERGE (a)-[:NEXT]->(next)
		WITH next
		UNWIND $options AS opt
		MERGE (na:Answer {text: opt.text, topic: false})
		SET na.isCorrect = opt.isCorrect
		MERGE (next)-[:HAS_OPTION]->(na)
	`

	OptionCorrectQuery = `
		MATCH (q:Question {text: $question})-[:HAS_OPTION]->(a:Answer {text: $answer, topic: false})
		RETURN a.isCorrect AS isCorrect
	`

	FirstQuestionQuery = `
		MATCH (s:Session {id: $session_id})-[:NEXT]->(q:Question)
		RETURN q.text AS text
	`

	TopicPhaseQuery = `
		MATCH (s:Session {id: $session_id})
		OPTIONAL MATCH (s)-[:HAS_OPTION]->(a:Answer)
		WHERE a.topic = true
		RETURN s.id AS session_id, a.id AS id, a.text AS text
	`

	// QuestionNeighborhoodQuery fetches one question's options, its selected
	// answer (if any) and any generated follow-up per option. One row per
	// (option, selection, follow-up) combination.
	QuestionNeighborhoodQuery = `
		MATCH (q:Question {text: $question})
		OPTIONAL MATCH (q)-[:HAS_OPTION]->(opt:Answer)
		OPTIONAL MATCH (q)-[:SELECTED]->(sel:Answer)
		OPTIONAL MATCH (opt)-[:NEXT]->(next:Question)
		RETURN opt.text AS option, opt.isCorrect AS isCorrect, sel.text AS selected, next.text AS next
	`
)
