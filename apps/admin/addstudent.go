package main

import (
	"context"
	"fmt"
	"net/mail"
	"text/template"

	echoapi "github.com/sogrim/technion-sogrim-sub000/apps/api/echo"
	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/student"
)

var tokenEmailTmpl = template.Must(template.New("token").Parse(`שלום {{.Name}},

נפתח עבורך חשבון ב-{{.AppName}}.
אסימון הגישה שלך:

{{.Token}}
`))

// addStudent creates a student and prints a token they can use right away.
// With notify, the token is emailed to the student too.
func (cli *commandLine) addStudent(name, email string, isAdmin, notify bool) error {
	st, err := cli.stSvc.Create(context.Background(), student.NewStudent{Name: name, Email: email, IsAdmin: isAdmin})
	if err != nil {
		return err
	}

	token, err := echoapi.GenerateToken(echoapi.GetStudentClaims(st, cli.conf), cli.conf.SecretKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "id: %s\ntoken: %s\n", st.ID, token)

	if notify {
		cli.mailSvc.SendMessages(&core.EmailMessage{
			To:       []mail.Address{{Name: st.Name, Address: st.Email}},
			Subject:  "אסימון גישה",
			Template: tokenEmailTmpl,
			TemplateData: map[string]string{
				"Name":    st.Name,
				"AppName": cli.conf.AppName,
				"Token":   token,
			},
		})
	}
	return nil
}
