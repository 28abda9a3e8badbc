package web

func IndexURL() string {
	return "/polls/"
}

func ArchiveURL() string {
	return "/polls/archive/"
}

func AddQuestionURL() string {
	return "/polls/add/"
}

func DetailURL(id uint) string {
	return "/polls/" + utoa(id) + "/"
}

func ResultsURL(id uint) string {
	return "/polls/" + utoa(id) + "/results/"
}

func VoteURL(id uint) string {
	return "/polls/" + utoa(id) + "/vote/"
}

func LiveResultsURL(id uint) string {
	return "/ws/questions/" + utoa(id)
}
